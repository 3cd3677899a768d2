package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"dormitory_backend/internals/metrics"
	"dormitory_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global: recover, CORS, log request, metrics, rate limit.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(metrics.Middleware())
	app.Use(GlobalRateLimiter())
}
