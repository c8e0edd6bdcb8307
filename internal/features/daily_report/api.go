package daily_report

import (
	"context"

	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
)

type DailyReportApi struct {
	controller *DailyReportController
	config     *config.Config
}

func NewDailyReportApi(controller *DailyReportController, config *config.Config) api.Route {
	return &DailyReportApi{
		controller: controller,
		config:     config,
	}
}

func (h *DailyReportApi) Setup(app *fiber.App) {
	reports := app.Group("/api/daily-report", middleware.AuthMiddleware(h.config.SkipAuth))

	reports.Get("/", h.controller.Get)
	reports.Get("/pdf", h.controller.PDF)
	reports.Get("/xlsx", h.controller.XLSX)
	reports.Post("/send", h.controller.Send)
}

// RegisterScheduler ties the scheduler to the application lifecycle.
func RegisterScheduler(lc fx.Lifecycle, scheduler *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
}
