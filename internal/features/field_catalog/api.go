package field_catalog

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FieldApi struct {
	controller *FieldController
	config     *config.Config
}

func NewFieldApi(controller *FieldController, config *config.Config) api.Route {
	return &FieldApi{
		controller: controller,
		config:     config,
	}
}

func (h *FieldApi) Setup(app *fiber.App) {
	fields := app.Group("/api/fields", middleware.AuthMiddleware(h.config.SkipAuth))

	fields.Get("/", h.controller.List)
	fields.Get("/grouped", h.controller.ListGrouped)
	fields.Get("/sample-context", h.controller.SampleContext)
	fields.Get("/:name", h.controller.Get)

	fields.Post("/", middleware.RequireRole("admin"), h.controller.Create)
	fields.Put("/:name", middleware.RequireRole("admin"), h.controller.Update)
	fields.Delete("/:name", middleware.RequireRole("admin"), h.controller.Delete)
}
