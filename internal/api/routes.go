package api

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

//go:embed static
var assets embed.FS

func SetupRoutes(app *fiber.App, handler *Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	app.Get("/weather", handler.GetWeather)
	app.Get("/healthz", handler.GetHealth)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		log.Fatal("Embedded static assets missing", zap.Error(err))
	}
	app.Use("/", filesystem.New(filesystem.Config{
		Root:  http.FS(static),
		Index: "/index.html",
	}))

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}

// NewApp builds a fiber app with the JSON error handler and all routes.
func NewApp(cfg fiber.Config, handler *Handler, log *zap.Logger) *fiber.App {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = ErrorHandler
	}
	app := fiber.New(cfg)
	SetupRoutes(app, handler, log)
	return app
}
