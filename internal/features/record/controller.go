package record

import (
	"errors"

	"broker-crm/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type RecordController struct {
	Service RecordService
}

func NewRecordController(service RecordService) *RecordController {
	return &RecordController{Service: service}
}

// GetRecord godoc
// @Summary Get record
// @Description Get one CRM record (contact, lead, agent, ...) by ID
// @Tags records
// @Produce json
// @Param collection path string true "Collection"
// @Param id path string true "Record ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/records/{collection}/{id} [get]
func (ctrl *RecordController) GetRecord(c *fiber.Ctx) error {
	rec, err := ctrl.Service.GetRecord(c.UserContext(), c.Params("collection"), c.Params("id"))
	if err != nil {
		return recordError(c, err)
	}
	return c.JSON(rec)
}

// ListRecords godoc
// @Summary List records
// @Description List CRM records of a collection; extra query parameters filter by equality
// @Tags records
// @Produce json
// @Param collection path string true "Collection"
// @Param limit query int false "Max records"
// @Param sort_by query string false "Sort field"
// @Param sort_order query string false "asc or desc"
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/records/{collection} [get]
func (ctrl *RecordController) ListRecords(c *fiber.Ctx) error {
	limit := ParseInt64(c.Query("limit", "50"), 50)
	sortBy := c.Query("sort_by", "created_at")
	desc := c.Query("sort_order", "desc") == "desc"

	filters := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if k != "limit" && k != "sort_by" && k != "sort_order" {
			filters[k] = string(value)
		}
	})

	records, err := ctrl.Service.ListRecords(c.UserContext(), c.Params("collection"), filters, limit, sortBy, desc)
	if err != nil {
		return recordError(c, err)
	}
	return c.JSON(records)
}

func recordError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrUnknownCollection) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return api.ErrorResponse(c, err)
}
