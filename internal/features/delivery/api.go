package delivery

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DeliveryApi struct {
	controller *DeliveryController
	config     *config.Config
}

func NewDeliveryApi(controller *DeliveryController, config *config.Config) api.Route {
	return &DeliveryApi{
		controller: controller,
		config:     config,
	}
}

func (h *DeliveryApi) Setup(app *fiber.App) {
	group := app.Group("/api/delivery", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/send", h.controller.Send)
	group.Get("/:id", h.controller.Status)
}
