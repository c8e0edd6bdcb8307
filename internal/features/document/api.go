package document

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentApi struct {
	controller *DocumentController
	config     *config.Config
}

func NewDocumentApi(controller *DocumentController, config *config.Config) api.Route {
	return &DocumentApi{
		controller: controller,
		config:     config,
	}
}

func (h *DocumentApi) Setup(app *fiber.App) {
	documents := app.Group("/api/documents", middleware.AuthMiddleware(h.config.SkipAuth))

	documents.Post("/:kind", h.controller.Generate)
	documents.Post("/:kind/send", h.controller.GenerateAndSend)
}
