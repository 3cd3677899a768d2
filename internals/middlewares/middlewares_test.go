package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okApp(h ...fiber.Handler) *fiber.App {
	app := fiber.New()
	for _, m := range h {
		app.Use(m)
	}
	app.Get("/staff/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })
	return app
}

func status(t *testing.T, app *fiber.App, target string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	return resp.StatusCode
}

// app.Test memakai remote addr 0.0.0.0
func TestIPAllowList(t *testing.T) {
	assert.Equal(t, http.StatusOK, status(t, okApp(IPAllowList(nil)), "/staff/ping"))
	assert.Equal(t, http.StatusOK, status(t, okApp(IPAllowList([]string{"0.0.0.0"})), "/staff/ping"))
	assert.Equal(t, http.StatusOK, status(t, okApp(IPAllowList([]string{"10.0.0.1", "0.0.0.0/8"})), "/staff/ping"))
	assert.Equal(t, http.StatusForbidden, status(t, okApp(IPAllowList([]string{"10.0.0.1"})), "/staff/ping"))
	// entri rusak diabaikan, tapi list tetap tidak kosong -> tertutup
	assert.Equal(t, http.StatusForbidden, status(t, okApp(IPAllowList([]string{"not-an-ip"})), "/staff/ping"))
	assert.Equal(t, http.StatusForbidden, status(t, okApp(IPAllowList([]string{"10.0.0.0/99"})), "/staff/ping"))
}

// STAFF_ALLOWED_IPS=" , " menghasilkan entri kosong -> tetap terbuka
func TestIPAllowList_BlankEntriesStayOpen(t *testing.T) {
	assert.Equal(t, http.StatusOK, status(t, okApp(IPAllowList([]string{"", "  "})), "/staff/ping"))
	assert.Equal(t, http.StatusOK, status(t, okApp(IPAllowList([]string{})), "/staff/ping"))
}

func TestRecoveryMiddleware(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, status(t, okApp(RecoveryMiddleware()), "/boom"))
}

func TestGlobalRateLimiter(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "2")
	app := okApp(GlobalRateLimiter())

	assert.Equal(t, http.StatusOK, status(t, app, "/staff/ping"))
	assert.Equal(t, http.StatusOK, status(t, app, "/staff/ping"))
	assert.Equal(t, http.StatusTooManyRequests, status(t, app, "/staff/ping"))
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	t.Setenv("CORS_ALLOW_ORIGINS", "https://dorm.example.edu")
	app := okApp(CorsMiddleware())

	req := httptest.NewRequest(http.MethodOptions, "/staff/ping", nil)
	req.Header.Set("Origin", "https://dorm.example.edu")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://dorm.example.edu", resp.Header.Get("Access-Control-Allow-Origin"))
}
