package handlers

import (
	"github.com/deskspace/deskspace/internal/middleware"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request services.RegisterInput
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.users.Register(c.UserContext(), request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered successfully", "user": user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request services.LoginInput
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	token, user, err := h.users.Login(c.UserContext(), request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.Me(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
