package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bobby-s-dev/forecast-proxy/internal/models"
	"github.com/bobby-s-dev/forecast-proxy/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const probeTimeout = 30 * time.Second

// WeatherGetter is the part of services.Forecaster the probe exercises.
type WeatherGetter interface {
	GetWeather(ctx context.Context, coords services.Coordinates) (*models.WeatherData, error)
}

// ProbeStatus is the outcome of the most recent upstream probe.
type ProbeStatus struct {
	Healthy   bool          `json:"healthy"`
	CheckedAt time.Time     `json:"checked_at"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// Prober periodically fetches the default forecast and records whether the
// upstream answered with a usable result.
type Prober struct {
	weather  WeatherGetter
	logger   *zap.Logger
	schedule string
	cron     *cron.Cron
	initial  sync.WaitGroup
	status   atomic.Pointer[ProbeStatus]
}

func NewProber(weather WeatherGetter, schedule string, logger *zap.Logger) *Prober {
	return &Prober{
		weather:  weather,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the probe job and runs it once immediately. An empty
// schedule disables probing.
func (p *Prober) Start() error {
	if p.schedule == "" {
		p.logger.Info("Upstream probe disabled")
		return nil
	}

	if _, err := p.cron.AddFunc(p.schedule, p.RunOnce); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", p.schedule, err)
	}

	p.cron.Start()
	p.logger.Info("Upstream probe started", zap.String("schedule", p.schedule))

	p.initial.Add(1)
	go func() {
		defer p.initial.Done()
		p.RunOnce()
	}()
	return nil
}

// Stop halts the schedule and waits for any running probe, including the
// one fired by Start, to finish.
func (p *Prober) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.initial.Wait()
	p.logger.Info("Upstream probe stopped")
}

func (p *Prober) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	start := time.Now()
	_, err := p.weather.GetWeather(ctx, services.Coordinates{})
	status := &ProbeStatus{
		Healthy:   err == nil,
		CheckedAt: start,
		Duration:  time.Since(start),
	}

	if err != nil {
		status.Error = err.Error()
		p.logger.Warn("Upstream probe failed",
			zap.Duration("duration", status.Duration),
			zap.Error(err))
	} else {
		p.logger.Debug("Upstream probe succeeded",
			zap.Duration("duration", status.Duration))
	}

	p.status.Store(status)
}

// Status returns the last probe result, or nil if none has completed.
func (p *Prober) Status() *ProbeStatus {
	return p.status.Load()
}
