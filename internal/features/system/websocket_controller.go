package system

import (
	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const clientBuffer = 32

type WebSocketController struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewWebSocketController(hub *Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{Hub: hub, Logger: logger}
}

// HandleWebSocket streams hub events to the connection until either side
// goes away. Client frames are read only to notice the close.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	events, release := h.Hub.Subscribe(clientBuffer)
	defer release()

	userID, _ := c.Locals("ws_user").(string)
	h.Logger.Debug("websocket connected", zap.String("user_id", userID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range events {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.Logger.Debug("websocket write failed", zap.Error(err))
				_ = c.Close()
				return
			}
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
	release()
	<-done
	h.Logger.Debug("websocket disconnected", zap.String("user_id", userID))
}
