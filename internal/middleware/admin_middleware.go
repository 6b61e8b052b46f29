package middleware

import "github.com/gofiber/fiber/v2"

// RequireAdmin ensures that only admin sessions reach admin routes
func RequireAdmin(c *fiber.Ctx) error {
	sess := CurrentSession(c)
	if sess == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	if !sess.IsAdmin {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Access denied. Admins only."})
	}
	return c.Next()
}
