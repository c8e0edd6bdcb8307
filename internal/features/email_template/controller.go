package email_template

import (
	"errors"

	"broker-crm/internal/common/api"
	"broker-crm/internal/features/record"
	"broker-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type EmailTemplateController struct {
	Service EmailTemplateService
}

func NewEmailTemplateController(service EmailTemplateService) *EmailTemplateController {
	return &EmailTemplateController{Service: service}
}

// Create godoc
// @Summary Create email template
// @Description Create a new email template. HTML is sanitised; merge tags are kept.
// @Tags email_templates
// @Accept json
// @Produce json
// @Param template body Template true "Email Template"
// @Success 201 {object} Template
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/email-templates [post]
func (c *EmailTemplateController) Create(ctx *fiber.Ctx) error {
	var template Template
	if err := ctx.BodyParser(&template); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Service.CreateTemplate(ctx.UserContext(), &template); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(template)
}

// Get godoc
// @Summary Get email template
// @Description Get an email template by ID
// @Tags email_templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} Template
// @Failure 404 {object} map[string]interface{}
// @Router /api/email-templates/{id} [get]
func (c *EmailTemplateController) Get(ctx *fiber.Ctx) error {
	template, err := c.Service.GetTemplate(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(template)
}

// List godoc
// @Summary List email templates
// @Tags email_templates
// @Produce json
// @Success 200 {array} Template
// @Failure 500 {object} map[string]interface{}
// @Router /api/email-templates [get]
func (c *EmailTemplateController) List(ctx *fiber.Ctx) error {
	templates, err := c.Service.ListTemplates(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(templates)
}

// Update godoc
// @Summary Update email template
// @Description Overwrite an email template. The last save wins.
// @Tags email_templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param template body Template true "Email Template"
// @Success 200 {object} Template
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/email-templates/{id} [put]
func (c *EmailTemplateController) Update(ctx *fiber.Ctx) error {
	var template Template
	if err := ctx.BodyParser(&template); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	template.ID = ctx.Params("id")

	if err := c.Service.UpdateTemplate(ctx.UserContext(), &template); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(template)
}

// Delete godoc
// @Summary Delete email template
// @Tags email_templates
// @Param id path string true "Template ID"
// @Success 204 {object} nil
// @Failure 404 {object} map[string]interface{}
// @Router /api/email-templates/{id} [delete]
func (c *EmailTemplateController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteTemplate(ctx.UserContext(), ctx.Params("id")); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Render godoc
// @Summary Render email template
// @Description Merge the template with the given context. Unresolved tags are reported, not rejected.
// @Tags email_templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body RenderRequest true "Render context"
// @Success 200 {object} RenderResult
// @Failure 404 {object} map[string]interface{}
// @Router /api/email-templates/{id}/render [post]
func (c *EmailTemplateController) Render(ctx *fiber.Ctx) error {
	var req RenderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := c.Service.Render(ctx.UserContext(), ctx.Params("id"), req.Context)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(result)
}

// RenderRecord godoc
// @Summary Render email template for a record
// @Description Merge the template with a stored record and its related agents and loan
// @Tags email_templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body RenderRecordRequest true "Record reference"
// @Success 200 {object} RenderResult
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/email-templates/{id}/render-record [post]
func (c *EmailTemplateController) RenderRecord(ctx *fiber.Ctx) error {
	var req RenderRecordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	result, err := c.Service.RenderForRecord(ctx.UserContext(), ctx.Params("id"), req.Collection, req.RecordID)
	if errors.Is(err, record.ErrUnknownCollection) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(result)
}

// Preview godoc
// @Summary Preview email template
// @Description Highlight merge tags and render a stored or unsaved template against sample values
// @Tags email_templates
// @Accept json
// @Produce json
// @Param request body PreviewRequest true "Preview request"
// @Success 200 {object} PreviewResult
// @Failure 404 {object} map[string]interface{}
// @Router /api/email-templates/preview [post]
func (c *EmailTemplateController) Preview(ctx *fiber.Ctx) error {
	var req PreviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := c.Service.Preview(ctx.UserContext(), req)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(result)
}

// SendTestEmail godoc
// @Summary Send test email
// @Description Render the template with test data and send it to one address
// @Tags email_templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body TestEmailRequest true "Test email request"
// @Success 200 {object} delivery.Email
// @Failure 400 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/email-templates/{id}/test [post]
func (c *EmailTemplateController) SendTestEmail(ctx *fiber.Ctx) error {
	var req TestEmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	email, err := c.Service.SendTest(ctx.UserContext(), ctx.Params("id"), req)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(email)
}
