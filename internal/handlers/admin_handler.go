package handlers

import (
	"github.com/deskspace/deskspace/internal/middleware"
	"github.com/deskspace/deskspace/internal/models"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the moderation endpoints.
type AdminHandler struct {
	properties *services.PropertyService
}

func NewAdminHandler(properties *services.PropertyService) *AdminHandler {
	return &AdminHandler{properties: properties}
}

// List all listings waiting for a decision
func (h *AdminHandler) Pending(c *fiber.Ctx) error {
	items, err := h.properties.Pending(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Approve or reject a listing
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	var request struct {
		Status        models.Status `json:"status"`
		ApprovalNotes string        `json:"approvalNotes"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := h.properties.SetStatus(c.UserContext(), middleware.CurrentSession(c), c.Params("id"), request.Status, request.ApprovalNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// Feature or unfeature a listing
func (h *AdminHandler) Feature(c *fiber.Ctx) error {
	var request struct {
		IsFeatured *bool `json:"is_featured"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if request.IsFeatured == nil {
		return badRequest(c, "is_featured is required")
	}

	p, err := h.properties.SetFeatured(c.UserContext(), middleware.CurrentSession(c), c.Params("id"), *request.IsFeatured)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}
