package system

import (
	"context"
	"time"

	"broker-crm/internal/common/api"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger is satisfied by the database handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	DB     Pinger
	Hub    *Hub
	Logger *zap.Logger
}

func NewHealthController(db Pinger, hub *Hub, logger *zap.Logger) *HealthController {
	return &HealthController{DB: db, Hub: hub, Logger: logger}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /health [get]
func (h *HealthController) HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// Ready godoc
// @Summary      Readiness Check
// @Description  Check that the database answers
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health/ready [get]
func (h *HealthController) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		h.Logger.Warn("readiness check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  "database unreachable",
		})
	}
	return c.JSON(fiber.Map{
		"status":            "ok",
		"websocket_clients": h.Hub.Clients(),
	})
}

type HealthApi struct {
	controller *HealthController
}

func NewHealthApi(controller *HealthController) api.Route {
	return &HealthApi{controller: controller}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.controller.HealthCheck)
	app.Get("/health/ready", h.controller.Ready)
}
