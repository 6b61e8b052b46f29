package handlers

import (
	"github.com/deskspace/deskspace/internal/middleware"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var request services.SendMessageInput
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}
	m, err := h.messages.Send(c.UserContext(), middleware.CurrentSession(c), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	views, err := h.messages.Inbox(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.messages.UnreadCount(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(n)
}

func (h *MessageHandler) ToggleRead(c *fiber.Ctx) error {
	m, err := h.messages.ToggleRead(c.UserContext(), middleware.CurrentSession(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(m)
}

func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	if err := h.messages.Delete(c.UserContext(), middleware.CurrentSession(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message deleted successfully"})
}
