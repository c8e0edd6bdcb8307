package settings

import (
	"broker-crm/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type SettingsController struct {
	Service SettingsService
}

func NewSettingsController(service SettingsService) *SettingsController {
	return &SettingsController{
		Service: service,
	}
}

// GetEmailConfig godoc
// @Summary Get email configuration
// @Description Get the current SMTP settings with the password redacted
// @Tags settings
// @Produce json
// @Success 200 {object} EmailConfig
// @Failure 500 {object} map[string]interface{}
// @Router /api/settings/email [get]
func (c *SettingsController) GetEmailConfig(ctx *fiber.Ctx) error {
	config, err := c.Service.GetEmailConfig(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if config == nil {
		return ctx.JSON(fiber.Map{})
	}
	return ctx.JSON(config.Redacted())
}

// UpdateEmailConfig godoc
// @Summary Update email configuration
// @Description Update the SMTP settings used by document delivery
// @Tags settings
// @Accept json
// @Produce json
// @Param config body EmailConfig true "Email Configuration"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/settings/email [put]
func (c *SettingsController) UpdateEmailConfig(ctx *fiber.Ctx) error {
	var config EmailConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateEmailConfig(ctx.UserContext(), config); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{"message": "Settings updated successfully"})
}

// GetBrokerageProfile godoc
// @Summary Get brokerage profile
// @Description Get the brokerage letterhead and disclosure settings
// @Tags settings
// @Produce json
// @Success 200 {object} BrokerageProfile
// @Failure 500 {object} map[string]interface{}
// @Router /api/settings/brokerage [get]
func (ctrl *SettingsController) GetBrokerageProfile(c *fiber.Ctx) error {
	profile, err := ctrl.Service.GetBrokerageProfile(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error retrieving brokerage profile",
		})
	}
	return c.JSON(profile)
}

// UpdateBrokerageProfile godoc
// @Summary Update brokerage profile
// @Description Update the brokerage letterhead and disclosure settings
// @Tags settings
// @Accept json
// @Produce json
// @Param profile body BrokerageProfile true "Brokerage Profile"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/settings/brokerage [put]
func (ctrl *SettingsController) UpdateBrokerageProfile(c *fiber.Ctx) error {
	var profile BrokerageProfile
	if err := c.BodyParser(&profile); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateBrokerageProfile(c.UserContext(), profile); err != nil {
		return api.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Brokerage profile updated successfully",
	})
}
