package middleware

import (
	"strings"

	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// Resolver turns a raw token into a session, or nil.
type Resolver interface {
	Resolve(raw string) *services.Session
}

// Session resolves the caller from the Authorization header and stores it in
// the request locals. Requests without a valid token continue anonymously.
func Session(r Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		// Ensure it's a Bearer token
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if sess := r.Resolve(token); sess != nil {
				c.Locals(sessionKey, sess)
			}
		}
		return c.Next()
	}
}

// CurrentSession returns the resolved session, or nil for anonymous callers.
func CurrentSession(c *fiber.Ctx) *services.Session {
	sess, _ := c.Locals(sessionKey).(*services.Session)
	return sess
}

// RequireAuth rejects anonymous callers.
func RequireAuth(c *fiber.Ctx) error {
	if CurrentSession(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	return c.Next()
}
