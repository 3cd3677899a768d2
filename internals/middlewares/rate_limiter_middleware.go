package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"dormitory_backend/internals/configs"
	helper "dormitory_backend/internals/helpers"
)

func newLimiter(max int, exp time.Duration, msg string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: exp,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonErrorCode(c, fiber.StatusTooManyRequests, "RATE_LIMITED", msg)
		},
	})
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(configs.GetEnvInt("RATE_LIMIT_PER_MINUTE", 100), time.Minute,
		"❌ Terlalu banyak permintaan. Silakan coba lagi nanti.")
}

// Rate limiter untuk endpoint mahasiswa (submit & cek status), lebih ketat
func StudentRateLimiter() fiber.Handler {
	return newLimiter(configs.GetEnvInt("STUDENT_RATE_LIMIT_PER_MINUTE", 20), time.Minute,
		"❌ Terlalu banyak percobaan. Coba beberapa saat lagi.")
}
