// Package main is the entry point for the merchant portal API.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merchantportal/internal/config"
	"merchantportal/internal/logger"
	"merchantportal/internal/metrics"
	"merchantportal/internal/repositories"
	"merchantportal/internal/routes"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.Init(logger.LogConfig{
		Level:       cfg.App.LogLevel,
		Environment: cfg.App.Environment,
		ServiceName: "merchantportal-api",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Initialize databases (PostgreSQL + Redis)
	if err := repositories.InitDB(cfg); err != nil {
		zl.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer repositories.Close(zl)
	zl.Info("✅ Connected to database and cache")

	app := fiber.New(fiber.Config{
		AppName:      "merchantportal",
		ErrorHandler: response.ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware(zl))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	if err := routes.SetupRoutes(app, cfg, repositories.DB, repositories.CacheService, zl); err != nil {
		zl.Fatal("Failed to set up routes", zap.Error(err))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		zl.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("Shutdown failed", zap.Error(err))
		}
	}()

	zl.Info("🚀 Server starting", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Environment))
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		zl.Error("Server stopped", zap.Error(err))
	}
}
