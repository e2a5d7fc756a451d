package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes registers all application routes and middleware.
func SetupRoutes(app *fiber.App, mailHandler *MailHandler) {
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	api := app.Group("/api")

	api.Get("/mails", mailHandler.ListMailbox)
	api.Post("/auth/google", mailHandler.ListRecent)
	api.Post("/all-mails", mailHandler.ListAll)
	api.Post("/mail", mailHandler.GetMail)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
