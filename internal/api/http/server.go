package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber app serving weather lookups.
func NewApp(service Service, defaultProvider string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-lookup",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	RegisterRoutes(app, service, defaultProvider)
	return app
}
