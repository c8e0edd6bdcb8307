package record

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RecordApi struct {
	recordController *RecordController
	config           *config.Config
}

func NewRecordApi(recordController *RecordController, config *config.Config) api.Route {
	return &RecordApi{
		recordController: recordController,
		config:           config,
	}
}

// Setup registers read-only record routes
func (h *RecordApi) Setup(app *fiber.App) {
	records := app.Group("/api/records", middleware.AuthMiddleware(h.config.SkipAuth))

	records.Get("/:collection", h.recordController.ListRecords)
	records.Get("/:collection/:id", h.recordController.GetRecord)
}
