package system

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is the frame pushed to websocket clients.
type Event struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// Hub fans events out to subscribed websocket connections. A subscriber
// whose buffer is full misses the event rather than stalling the sender.
type Hub struct {
	Logger *zap.Logger

	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
	closed bool
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Logger: logger,
		subs:   make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel of encoded events and a function that
// releases it. The channel is closed on release or when the hub closes.
func (h *Hub) Subscribe(buffer int) (<-chan []byte, func()) {
	ch := make(chan []byte, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

// Broadcast implements delivery.Broadcaster.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(Event{Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		h.Logger.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			h.Logger.Warn("dropping event for slow client", zap.String("event", event))
		}
	}
}

// Clients returns the number of live subscriptions.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close releases every subscription. Later subscriptions are closed at once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
