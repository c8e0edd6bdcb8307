package system

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

type SwaggerApi struct {
	config *config.Config
}

func NewSwaggerApi(cfg *config.Config) api.Route {
	return &SwaggerApi{config: cfg}
}

// Setup serves the API docs outside production.
func (h *SwaggerApi) Setup(app *fiber.App) {
	if h.config.IsProduction() {
		return
	}
	app.Get("/swagger/*", swagger.HandlerDefault)
}
