package handlers

import (
	"github.com/deskspace/deskspace/internal/middleware"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BookmarkHandler struct {
	bookmarks *services.BookmarkService
}

func NewBookmarkHandler(bookmarks *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

type bookmarkRequest struct {
	PropertyID string `json:"propertyId"`
}

func (r *bookmarkRequest) parse(c *fiber.Ctx) error {
	if err := c.BodyParser(r); err != nil || r.PropertyID == "" {
		return &services.ValidationError{Field: "propertyId", Message: "is required"}
	}
	return nil
}

func (h *BookmarkHandler) Toggle(c *fiber.Ctx) error {
	var request bookmarkRequest
	if err := request.parse(c); err != nil {
		return respondError(c, err)
	}
	on, err := h.bookmarks.Toggle(c.UserContext(), middleware.CurrentSession(c), request.PropertyID)
	if err != nil {
		return respondError(c, err)
	}
	message := "Bookmark removed successfully"
	if on {
		message = "Bookmark added successfully"
	}
	return c.JSON(fiber.Map{"message": message, "isBookmarked": on})
}

func (h *BookmarkHandler) Check(c *fiber.Ctx) error {
	var request bookmarkRequest
	if err := request.parse(c); err != nil {
		return respondError(c, err)
	}
	on, err := h.bookmarks.IsBookmarked(c.UserContext(), middleware.CurrentSession(c), request.PropertyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"isBookmarked": on})
}

func (h *BookmarkHandler) List(c *fiber.Ctx) error {
	items, err := h.bookmarks.List(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
