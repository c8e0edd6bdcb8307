package system

import (
	"context"

	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
)

type WebSocketApi struct {
	Controller *WebSocketController
	config     *config.Config
}

func NewWebSocketApi(controller *WebSocketController, cfg *config.Config) api.Route {
	return &WebSocketApi{
		Controller: controller,
		config:     cfg,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/api/ws", upgradeOnly, tokenFromQuery, middleware.AuthMiddleware(h.config.SkipAuth), func(c *fiber.Ctx) error {
		c.Locals("ws_user", middleware.UserID(c))
		return c.Next()
	}, websocket.New(h.Controller.HandleWebSocket))
}

func upgradeOnly(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// tokenFromQuery lets browsers, which cannot set headers on an upgrade,
// pass the bearer token as ?token=.
func tokenFromQuery(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		if token := c.Query("token"); token != "" {
			c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	return c.Next()
}

// RegisterHub closes open subscriptions on shutdown so handlers return.
func RegisterHub(lc fx.Lifecycle, hub *Hub) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			hub.Close()
			return nil
		},
	})
}
