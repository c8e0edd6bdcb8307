package file

import (
	"broker-crm/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type FileController struct {
	FileService FileService
	Storage     Storage
}

func NewFileController(fileService FileService, storage Storage) *FileController {
	return &FileController{
		FileService: fileService,
		Storage:     storage,
	}
}

// UploadFile godoc
// @Summary Upload file
// @Description Upload a file attached to a CRM record
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param collection formData string true "Record collection"
// @Param record_id formData string true "Record ID"
// @Param description formData string false "File Description"
// @Success 201 {object} File
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/upload [post]
func (ctrl *FileController) UploadFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Error retrieving file",
		})
	}

	content, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Error reading file",
		})
	}
	defer content.Close()

	file, err := ctrl.FileService.UploadFile(c.UserContext(), Upload{
		Collection:  c.FormValue("collection"),
		RecordID:    c.FormValue("record_id"),
		FileName:    header.Filename,
		MimeType:    header.Header.Get("Content-Type"),
		Description: c.FormValue("description"),
		Size:        header.Size,
		Content:     content,
	})
	if err != nil {
		return api.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(file)
}

// GetFilesByRecord godoc
// @Summary List record files
// @Description Get all files attached to a record, newest first
// @Tags files
// @Produce json
// @Param collection path string true "Record collection"
// @Param recordId path string true "Record ID"
// @Success 200 {array} File
// @Failure 500 {object} map[string]interface{}
// @Router /api/files/{collection}/{recordId} [get]
func (ctrl *FileController) GetFilesByRecord(c *fiber.Ctx) error {
	files, err := ctrl.FileService.GetFilesByRecord(c.UserContext(), c.Params("collection"), c.Params("recordId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error retrieving files",
		})
	}

	return c.JSON(files)
}

// DownloadFile godoc
// @Summary Download file
// @Description Download a file by ID
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {file} file "File content"
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id}/download [get]
func (ctrl *FileController) DownloadFile(c *fiber.Ctx) error {
	file, err := ctrl.FileService.GetFile(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "File not found",
		})
	}

	content, err := ctrl.Storage.Open(file.Path)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "File not found",
		})
	}

	c.Attachment(file.OriginalFilename)
	if file.MimeType != "" {
		c.Set(fiber.HeaderContentType, file.MimeType)
	}
	return c.SendStream(content, int(file.Size))
}

// DeleteFile godoc
// @Summary Delete file
// @Description Delete a file by ID. Only the uploader or an admin may delete.
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id} [delete]
func (ctrl *FileController) DeleteFile(c *fiber.Ctx) error {
	if err := ctrl.FileService.DeleteFile(c.UserContext(), c.Params("id")); err != nil {
		return api.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "File deleted successfully",
	})
}
