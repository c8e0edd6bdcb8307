package delivery

import (
	"broker-crm/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type DeliveryController struct {
	Service DeliveryService
}

func NewDeliveryController(service DeliveryService) *DeliveryController {
	return &DeliveryController{Service: service}
}

// Send godoc
// @Summary Send an email with an optional PDF attachment
// @Description Validates the request, then hands it to the mail server. Transport failures return 502 with the server's message.
// @Tags delivery
// @Accept json
// @Produce json
// @Param request body Request true "Delivery request"
// @Success 200 {object} Email
// @Failure 400 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/delivery/send [post]
func (c *DeliveryController) Send(ctx *fiber.Ctx) error {
	var req Request
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	email, err := c.Service.Send(ctx.UserContext(), req)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(email)
}

// Status godoc
// @Summary Get delivery status
// @Tags delivery
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} Email
// @Failure 404 {object} map[string]interface{}
// @Router /api/delivery/{id} [get]
func (c *DeliveryController) Status(ctx *fiber.Ctx) error {
	email, err := c.Service.GetStatus(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(email)
}
