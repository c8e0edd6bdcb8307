package middleware

import (
	"strings"

	"broker-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through when the authenticated user holds at
// least one of roles. It must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if len(claims.Roles) == 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: No roles assigned",
			})
		}

		for _, have := range claims.Roles {
			for _, want := range roles {
				if strings.EqualFold(have, want) {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied: " + strings.Join(roles, " or ") + " role required",
		})
	}
}
