package delivery

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var ErrNotConfigured = errors.New("email configuration not found")

// DeliveryError wraps a transport failure. Its message is shown to the user
// as is, and nothing retries it.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "failed to send: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) HTTPStatus() int {
	return fiber.StatusBadGateway
}
