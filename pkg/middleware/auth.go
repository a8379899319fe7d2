package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sarmatovd/shop-services/pkg/tokens"
)

// NewAuthMiddleware validates the bearer token locally and stores the
// authenticated user's name and email in the request locals.
func NewAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: missed header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid header format"})
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid token"})
		}

		c.Locals("userName", claims.Name)
		c.Locals("userEmail", claims.Email)
		return c.Next()
	}
}
