package handlers

import (
	"errors"
	"log"

	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

const genericError = "Something went wrong"

// respondError maps service errors to status codes. Upstream detail is
// logged, never returned.
func respondError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	var ue *services.UpstreamError
	switch {
	case errors.Is(err, services.ErrBadCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
	case errors.As(err, &ue):
		log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
		msg := ue.Public
		if msg == "" {
			msg = genericError
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
	default:
		log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
	}
}

// errorHandler answers errors that escape a handler, including recovered
// panics. Fiber errors keep their status and message; anything else is
// logged and hidden behind a generic 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
