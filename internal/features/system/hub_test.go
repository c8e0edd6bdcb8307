package system

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// The fiber apps in the health tests start fasthttp's date ticker, which
// lives for the rest of the process.
var fasthttpClock = goleak.IgnoreAnyFunction("github.com/valyala/fasthttp.updateServerDate.func1")

func TestHubBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t, fasthttpClock)

	hub := NewHub(zap.NewNop())
	a, releaseA := hub.Subscribe(4)
	b, releaseB := hub.Subscribe(4)
	defer releaseA()
	defer releaseB()
	assert.Equal(t, 2, hub.Clients())

	hub.Broadcast("email.status", map[string]string{"id": "e1", "status": "sent"})

	for _, ch := range []<-chan []byte{a, b} {
		var got struct {
			Event   string            `json:"event"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(<-ch, &got))
		assert.Equal(t, "email.status", got.Event)
		assert.Equal(t, "sent", got.Payload["status"])
	}
}

func TestHubDropsForFullBuffer(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ch, release := hub.Subscribe(1)
	defer release()

	hub.Broadcast("a", 1)
	hub.Broadcast("b", 2)

	assert.Len(t, ch, 1)
	var got Event
	require.NoError(t, json.Unmarshal(<-ch, &got))
	assert.Equal(t, "a", got.Event)
}

func TestHubRelease(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ch, release := hub.Subscribe(1)

	release()
	release()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Clients())

	assert.NotPanics(t, func() { hub.Broadcast("after", nil) })
}

func TestHubClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ch, release := hub.Subscribe(1)

	hub.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, release)

	late, _ := hub.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}

func TestHubConcurrentUse(t *testing.T) {
	defer goleak.VerifyNone(t, fasthttpClock)

	hub := NewHub(zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, release := hub.Subscribe(2)
			hub.Broadcast("tick", nil)
			release()
			for range ch {
			}
		}()
		go func() {
			defer wg.Done()
			hub.Broadcast("tick", nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Clients())
}
