package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber app with the standard middleware and every route.
func NewApp(bodyLimit int, routes Routes) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "deskspace",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Register(app)
	return app
}
