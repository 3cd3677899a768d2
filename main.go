package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dormitory_backend/internals/configs"
	database "dormitory_backend/internals/databases"
	"dormitory_backend/internals/features/housing/scheduler"
	helper "dormitory_backend/internals/helpers"
	middlewares "dormitory_backend/internals/middlewares"
	routes "dormitory_backend/internals/route"
	"dormitory_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	configs.InitLogger()

	security, err := configs.LoadSecurityConfig()
	if err != nil {
		logrus.Fatalf("❌ security config: %v", err)
	}

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          helper.ErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             6 << 20, // import file
		ProxyHeader:           configs.GetEnv("PROXY_HEADER"),
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timeout guard (selaras dengan statement_timeout di DB)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.ConnectRegistryDB()
	database.TunePool(database.DB)
	database.TunePool(database.RegistryDB)
	if err := database.Migrate(database.DB); err != nil {
		logrus.Fatalf("❌ migrate: %v", err)
	}
	database.WarmUpQueries(database.DB, database.RegistryDB)

	svc := routes.NewHousingService(database.DB, database.RegistryDB)
	seeds.RunAllSeeds(context.Background(), svc)

	// ⏱ scheduler setelah DB siap
	cron, err := scheduler.StartAutoProcessCron(configs.GetEnv("AUTO_PROCESS_CRON"), svc)
	if err != nil {
		logrus.Fatalf("❌ AUTO_PROCESS_CRON tidak valid: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, database.RegistryDB, svc, security.AllowedIPs())

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		logrus.Infof("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: HTTP -> cron -> pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	scheduler.StopAutoProcessCron(ctx, cron)
	database.Close(database.DB, database.RegistryDB)
	logrus.Info("👋 server stopped")
}
