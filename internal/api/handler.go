package api

import (
	"context"
	"errors"
	"time"

	"github.com/bobby-s-dev/forecast-proxy/internal/models"
	"github.com/bobby-s-dev/forecast-proxy/internal/scheduler"
	"github.com/bobby-s-dev/forecast-proxy/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgInvalidCoordinates = "Latitude must be between -90 and 90. Longitude between -180 and 180."
	msgFetchFailed        = "Failed to fetch weather data"
)

type WeatherService interface {
	GetWeather(ctx context.Context, coords services.Coordinates) (*models.WeatherData, error)
}

type ProbeReporter interface {
	Status() *scheduler.ProbeStatus
}

type BreakerReporter interface {
	State() string
}

type Handler struct {
	weather WeatherService
	probe   ProbeReporter
	breaker BreakerReporter
	logger  *zap.Logger
}

func NewHandler(weather WeatherService, probe ProbeReporter, breaker BreakerReporter, logger *zap.Logger) *Handler {
	return &Handler{
		weather: weather,
		probe:   probe,
		breaker: breaker,
		logger:  logger,
	}
}

// GetWeather handles GET /weather
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	coords, err := services.ParseCoordinates(c.Query("latitude"), c.Query("longitude"))
	if err != nil {
		h.logger.Debug("Rejected weather request",
			zap.String("latitude", c.Query("latitude")),
			zap.String("longitude", c.Query("longitude")),
			zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msgInvalidCoordinates})
	}

	weather, err := h.weather.GetWeather(c.UserContext(), coords)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if coords.Latitude != nil {
			fields = append(fields, zap.Float64("latitude", *coords.Latitude))
		}
		if coords.Longitude != nil {
			fields = append(fields, zap.Float64("longitude", *coords.Longitude))
		}
		if errors.Is(err, services.ErrUpstreamEmpty) || errors.Is(err, services.ErrMalformedBlock) {
			fields = append(fields, zap.String("reason", "unusable upstream response"))
		}
		h.logger.Error("Failed to fetch weather data", fields...)

		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: msgFetchFailed})
	}

	return c.JSON(weather)
}

// GetHealth handles GET /healthz
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	status := "ok"

	var probe *scheduler.ProbeStatus
	if h.probe != nil {
		probe = h.probe.Status()
		if probe != nil && !probe.Healthy {
			status = "degraded"
		}
	}

	breaker := "unknown"
	if h.breaker != nil {
		breaker = h.breaker.State()
		if breaker != "closed" {
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(startTime).String(),
		"upstream": fiber.Map{
			"circuit": breaker,
			"probe":   probe,
		},
	})
}

// ErrorHandler turns errors escaping a handler, including recovered panics,
// into a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(models.ErrorResponse{Error: message})
}

var startTime = time.Now()
