package file

import (
	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FileApi struct {
	controller *FileController
	config     *config.Config
}

func NewFileApi(controller *FileController, config *config.Config) api.Route {
	return &FileApi{
		controller: controller,
		config:     config,
	}
}

func (h *FileApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	app.Post("/api/upload", auth, h.controller.UploadFile)
	app.Get("/api/files/:id/download", auth, h.controller.DownloadFile)
	app.Get("/api/files/:collection/:recordId", auth, h.controller.GetFilesByRecord)
	app.Delete("/api/files/:id", auth, h.controller.DeleteFile)

	app.Use(h.config.FSURL, auth)
	app.Static(h.config.FSURL, h.config.FSPath)
}

// NewStorage provides the disk storage rooted at FS_PATH.
func NewStorage(cfg *config.Config) (Storage, error) {
	return NewDiskStorage(cfg.FSPath)
}
