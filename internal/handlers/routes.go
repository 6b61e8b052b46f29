package handlers

import (
	"github.com/deskspace/deskspace/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Routes holds every handler and the auth rate limiter.
type Routes struct {
	Sessions   middleware.Resolver
	Limiter    *middleware.RateLimiter
	Auth       *AuthHandler
	Properties *PropertyHandler
	Admin      *AdminHandler
	Uploads    *UploadHandler
	Bookmarks  *BookmarkHandler
	Messages   *MessageHandler
}

func (r Routes) Register(app *fiber.App) {
	app.Use(middleware.Session(r.Sessions))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth Routes
	auth := app.Group("/auth")
	if r.Limiter != nil {
		auth.Use(middleware.RateLimit(r.Limiter))
	}
	auth.Post("/register", r.Auth.Register)
	auth.Post("/login", r.Auth.Login)
	auth.Get("/me", middleware.RequireAuth, r.Auth.Me)

	// Property Routes; fixed paths before /:id
	props := app.Group("/properties")
	props.Get("/", r.Properties.List)
	props.Get("/featured", r.Properties.Featured)
	props.Get("/pending", middleware.RequireAdmin, r.Admin.Pending)
	props.Get("/user/:userId", middleware.RequireAuth, r.Properties.ByOwner)
	props.Post("/", middleware.RequireAuth, r.Properties.Create)
	props.Get("/:id", r.Properties.Get)
	props.Put("/:id", middleware.RequireAuth, r.Properties.Update)
	props.Delete("/:id", middleware.RequireAuth, r.Properties.Delete)
	props.Put("/:id/approve", middleware.RequireAdmin, r.Admin.Approve)
	props.Put("/:id/feature", middleware.RequireAdmin, r.Admin.Feature)

	app.Post("/upload", middleware.RequireAuth, r.Uploads.Upload)

	bookmarks := app.Group("/bookmarks", middleware.RequireAuth)
	bookmarks.Get("/", r.Bookmarks.List)
	bookmarks.Post("/", r.Bookmarks.Toggle)
	bookmarks.Post("/check", r.Bookmarks.Check)

	messages := app.Group("/messages", middleware.RequireAuth)
	messages.Get("/", r.Messages.Inbox)
	messages.Post("/", r.Messages.Send)
	messages.Get("/unread-count", r.Messages.UnreadCount)
	messages.Put("/:id", r.Messages.ToggleRead)
	messages.Delete("/:id", r.Messages.Delete)
}
