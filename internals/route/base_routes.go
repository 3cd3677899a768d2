package routes

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gorm.io/gorm"

	database "dormitory_backend/internals/databases"
	"dormitory_backend/internals/metrics"
)

func BaseRoutes(app *fiber.App, housingDB, registryDB *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Dormitory housing service is running 🚀")
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		check := func(db *gorm.DB) string {
			if err := database.Ping(c.UserContext(), db); err != nil {
				serverStatus = "DOWN"
				httpStatus = fiber.StatusServiceUnavailable
				return "Database connection error"
			}
			return "Connected"
		}
		housing := check(housingDB)
		registry := check(registryDB)

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       housing,
			"registry":       registry,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("APP_ENV"),
		})
	})
}
