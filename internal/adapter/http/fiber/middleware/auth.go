package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator validates an admin bearer token.
type TokenValidator interface {
	ValidateToken(token string) error
}

// AdminRequired guards operational endpoints with a bearer JWT issued by the
// admin service.
func AdminRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
		}

		if err := validator.ValidateToken(parts[1]); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		return c.Next()
	}
}
