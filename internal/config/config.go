package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	Upstream struct {
		OpenMeteoURL string
		Timeout      time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Probe struct {
		Schedule string
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("read_timeout", "10s")
	v.SetDefault("write_timeout", "10s")
	v.SetDefault("log_level", "info")

	v.SetDefault("openmeteo_url", "https://api.open-meteo.com/v1")
	v.SetDefault("upstream_timeout", "10s")

	v.SetDefault("circuit_breaker_threshold", 3)
	v.SetDefault("circuit_breaker_timeout", "30s")

	v.SetDefault("probe_schedule", "@every 5m")
}

// LoadConfig reads an optional .env file and config.yaml, then lets the
// environment override both.
func LoadConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{}

	cfg.Server.Port = v.GetString("port")
	cfg.Server.ReadTimeout = v.GetDuration("read_timeout")
	cfg.Server.WriteTimeout = v.GetDuration("write_timeout")
	cfg.Server.LogLevel = v.GetString("log_level")

	cfg.Upstream.OpenMeteoURL = v.GetString("openmeteo_url")
	cfg.Upstream.Timeout = v.GetDuration("upstream_timeout")

	cfg.CircuitBreaker.Threshold = v.GetInt("circuit_breaker_threshold")
	cfg.CircuitBreaker.Timeout = v.GetDuration("circuit_breaker_timeout")

	cfg.Probe.Schedule = v.GetString("probe_schedule")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.Upstream.OpenMeteoURL == "" {
		return errors.New("OPENMETEO_URL must not be empty")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.Upstream.Timeout)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// NewLogger builds the process logger for the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Server.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zcfg := zap.NewProductionConfig()
	if level.Level() == zap.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level

	return zcfg.Build()
}
