package audit

import (
	"strconv"

	common_models "broker-crm/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary List audit logs
// @Description List template, field, settings and delivery changes, newest first
// @Tags audit
// @Produce json
// @Param module query string false "Module (collection) name"
// @Param record_id query string false "Record ID"
// @Param action query string false "Audit action"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {array} common_models.AuditLog
// @Failure 500 {object} map[string]interface{}
// @Router /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := Filter{
		Module:   c.Query("module"),
		RecordID: c.Query("record_id"),
		Action:   common_models.AuditAction(c.Query("action")),
	}

	logs, err := ctrl.Service.ListLogs(c.UserContext(), filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(logs)
}
