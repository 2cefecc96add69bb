package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/forecast-proxy/internal/api"
	"github.com/bobby-s-dev/forecast-proxy/internal/config"
	"github.com/bobby-s-dev/forecast-proxy/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger until the configured level is known
	bootLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(bootLogger)

	cfg, err := config.LoadConfig(bootLogger)
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	_ = bootLogger.Sync()

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	if err := services.ValidateLayout(); err != nil {
		logger.Fatal("Forecast variable layout mismatch", zap.Error(err))
	}

	deps := wire(cfg, logger)

	app := api.NewApp(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		DisableStartupMessage: true,
	}, api.NewHandler(deps.forecaster, deps.prober, deps.upstream, logger), logger)

	if err := deps.prober.Start(); err != nil {
		logger.Fatal("Failed to start upstream probe", zap.Error(err))
	}

	go func() {
		addr := cfg.Addr()
		logger.Info("Weather service listening", zap.String("url", "http://localhost"+addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deps.prober.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
