package daily_report

import (
	"time"

	"broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DailyReportController struct {
	Service DailyReportService
	Config  *config.Config
}

func NewDailyReportController(service DailyReportService, cfg *config.Config) *DailyReportController {
	return &DailyReportController{Service: service, Config: cfg}
}

// parseDay reads YYYY-MM-DD, defaulting to today.
func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation(DateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, utils.NewValidationError("date", "must be formatted as YYYY-MM-DD")
	}
	return day, nil
}

// Get godoc
// @Summary Daily report
// @Description Rates and activity for one day
// @Tags daily_report
// @Produce json
// @Param date query string false "Day as YYYY-MM-DD, default today"
// @Success 200 {object} DailyReport
// @Failure 400 {object} map[string]interface{}
// @Router /api/daily-report [get]
func (c *DailyReportController) Get(ctx *fiber.Ctx) error {
	day, err := parseDay(ctx.Query("date"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	report, err := c.Service.Build(ctx.UserContext(), day)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(report)
}

// PDF godoc
// @Summary Daily report PDF
// @Tags daily_report
// @Produce application/pdf
// @Param date query string false "Day as YYYY-MM-DD, default today"
// @Success 200 {file} file "PDF document"
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/daily-report/pdf [get]
func (c *DailyReportController) PDF(ctx *fiber.Ctx) error {
	day, err := parseDay(ctx.Query("date"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	data, name, err := c.Service.PDF(ctx.UserContext(), day)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	ctx.Attachment(name)
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	return ctx.Send(data)
}

// XLSX godoc
// @Summary Daily report spreadsheet
// @Tags daily_report
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param date query string false "Day as YYYY-MM-DD, default today"
// @Success 200 {file} file "Excel workbook"
// @Failure 400 {object} map[string]interface{}
// @Router /api/daily-report/xlsx [get]
func (c *DailyReportController) XLSX(ctx *fiber.Ctx) error {
	day, err := parseDay(ctx.Query("date"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	data, name, err := c.Service.XLSX(ctx.UserContext(), day)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	ctx.Attachment(name)
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Send(data)
}

// Send godoc
// @Summary Email daily report
// @Description Email the day's PDF. Recipients default to DAILY_REPORT_RECIPIENTS.
// @Tags daily_report
// @Accept json
// @Produce json
// @Param request body SendRequest false "Date and recipients"
// @Success 200 {object} delivery.Email
// @Failure 400 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/daily-report/send [post]
func (c *DailyReportController) Send(ctx *fiber.Ctx) error {
	var req SendRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if err := utils.ValidateStruct(req); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	day, err := parseDay(req.Date)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	recipients := req.Recipients
	if len(recipients) == 0 {
		recipients = c.Config.DailyReportRecipients
	}
	email, err := c.Service.Send(ctx.UserContext(), day, recipients)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(email)
}
