package settings

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SettingsApi struct {
	Controller *SettingsController
	Config     *config.Config
}

func NewSettingsApi(controller *SettingsController, config *config.Config) api.Route {
	return &SettingsApi{
		Controller: controller,
		Config:     config,
	}
}

func (a *SettingsApi) Setup(app *fiber.App) {
	group := app.Group("/api/settings", middleware.AuthMiddleware(a.Config.SkipAuth))

	group.Get("/email", a.Controller.GetEmailConfig)
	group.Put("/email", middleware.RequireRole("admin"), a.Controller.UpdateEmailConfig)
	group.Get("/brokerage", a.Controller.GetBrokerageProfile)
	group.Put("/brokerage", middleware.RequireRole("admin"), a.Controller.UpdateBrokerageProfile)
}
