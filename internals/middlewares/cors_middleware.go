// middlewares/cors.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"dormitory_backend/internals/configs"
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5500",
}

// CorsMiddleware membuat middleware CORS; origin dari CORS_ALLOW_ORIGINS (comma list)
func CorsMiddleware() fiber.Handler {
	origins := configs.GetEnvList("CORS_ALLOW_ORIGINS")
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: !containsWildcard(origins),
	})
}

// fiber menolak AllowCredentials bersama origin "*"
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
