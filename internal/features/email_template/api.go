package email_template

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EmailTemplateApi struct {
	controller *EmailTemplateController
	config     *config.Config
}

func NewEmailTemplateApi(
	controller *EmailTemplateController,
	config *config.Config,
) api.Route {
	return &EmailTemplateApi{
		controller: controller,
		config:     config,
	}
}

func (h *EmailTemplateApi) Setup(app *fiber.App) {
	templates := app.Group("/api/email-templates", middleware.AuthMiddleware(h.config.SkipAuth))

	templates.Post("/", h.controller.Create)
	templates.Get("/", h.controller.List)
	templates.Post("/preview", h.controller.Preview)
	templates.Get("/:id", h.controller.Get)
	templates.Put("/:id", h.controller.Update)
	templates.Delete("/:id", h.controller.Delete)
	templates.Post("/:id/render", h.controller.Render)
	templates.Post("/:id/render-record", h.controller.RenderRecord)
	templates.Post("/:id/test", h.controller.SendTestEmail)
}
