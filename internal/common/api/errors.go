package api

import (
	"errors"

	"broker-crm/internal/database"
	"broker-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type statusCoder interface {
	HTTPStatus() int
}

// ErrorResponse writes err as {"error": ...} with a status derived from its
// type: validation 400, missing document 404, typed errors their own code,
// everything else 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  ve.Error(),
			"fields": ve.Fields,
		})
	}
	if database.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return c.Status(sc.HTTPStatus()).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
