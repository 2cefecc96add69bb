package main

import (
	"github.com/bobby-s-dev/forecast-proxy/internal/config"
	"github.com/bobby-s-dev/forecast-proxy/internal/scheduler"
	"github.com/bobby-s-dev/forecast-proxy/internal/services"
	"github.com/bobby-s-dev/forecast-proxy/pkg/client"
	"go.uber.org/zap"
)

type dependencies struct {
	upstream   *client.OpenMeteoClient
	forecaster *services.Forecaster
	prober     *scheduler.Prober
}

// wire builds the request path and the background probe. The probe gets its
// own client so its failures never trip the breaker serving /weather.
func wire(cfg *config.Config, logger *zap.Logger) dependencies {
	clientConfig := client.ClientConfig{
		Timeout:        cfg.Upstream.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	upstream := client.NewOpenMeteoClient(cfg.Upstream.OpenMeteoURL, clientConfig, logger)
	probeUpstream := client.NewNamedOpenMeteoClient("openmeteo-probe", cfg.Upstream.OpenMeteoURL, clientConfig, logger)

	return dependencies{
		upstream:   upstream,
		forecaster: services.NewForecaster(upstream, logger),
		prober: scheduler.NewProber(
			services.NewForecaster(probeUpstream, logger),
			cfg.Probe.Schedule,
			logger,
		),
	}
}
