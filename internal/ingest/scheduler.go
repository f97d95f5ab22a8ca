package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrisat/field-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Schedule holds the periodic job intervals and their parameters. A zero
// interval disables that job.
type Schedule struct {
	FireCheckInterval time.Duration
	FireBufferKm      float64
	FireDays          int

	WeatherInterval time.Duration
	WeatherDays     int

	CleanupInterval time.Duration
	Retention       Retention
}

// DefaultSchedule runs daily fire monitoring with a widened 15km buffer,
// daily weather updates fetching the last 3 days, and a daily cleanup.
var DefaultSchedule = Schedule{
	FireCheckInterval: 24 * time.Hour,
	FireBufferKm:      15,
	FireDays:          2,
	WeatherInterval:   24 * time.Hour,
	WeatherDays:       3,
	CleanupInterval:   24 * time.Hour,
	Retention:         DefaultRetention,
}

// Scheduler drives the bulk tasks on their intervals until the context is
// cancelled.
type Scheduler struct {
	service  *Service
	schedule Schedule
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewScheduler creates a scheduler on the given clock.
func NewScheduler(service *Service, schedule Schedule, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		service:  service,
		schedule: schedule,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run blocks, firing jobs on their tickers, until ctx is cancelled. Jobs run
// sequentially on this goroutine so provider quotas are never hit by
// overlapping bulk runs.
func (sc *Scheduler) Run(ctx context.Context) error {
	sc.logger.Info("scheduler started",
		"fire_interval", sc.schedule.FireCheckInterval,
		"weather_interval", sc.schedule.WeatherInterval,
		"cleanup_interval", sc.schedule.CleanupInterval)

	fire := sc.newTicker(sc.schedule.FireCheckInterval)
	weather := sc.newTicker(sc.schedule.WeatherInterval)
	cleanup := sc.newTicker(sc.schedule.CleanupInterval)
	defer stopTicker(fire)
	defer stopTicker(weather)
	defer stopTicker(cleanup)

	for {
		select {
		case <-ctx.Done():
			sc.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-chanOf(fire):
			sc.runJob(ctx, "fire_check", func(ctx context.Context) error {
				_, err := sc.service.BulkCheckFires(ctx, sc.schedule.FireBufferKm, sc.schedule.FireDays)
				return err
			})
		case <-chanOf(weather):
			sc.runJob(ctx, "weather_update", func(ctx context.Context) error {
				_, err := sc.service.BulkIngestWeather(ctx, "", sc.schedule.WeatherDays, false)
				return err
			})
		case <-chanOf(cleanup):
			sc.runJob(ctx, "cleanup", func(ctx context.Context) error {
				_, err := sc.service.Cleanup(ctx, sc.schedule.Retention)
				return err
			})
		}
	}
}

func (sc *Scheduler) runJob(ctx context.Context, name string, fn func(context.Context) error) {
	sc.metrics.SchedulerRuns.WithLabelValues(name).Inc()
	sc.metrics.TasksRunning.Inc()
	defer sc.metrics.TasksRunning.Dec()

	start := sc.clock.Now()
	if err := fn(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		sc.logger.Error("scheduled job failed", "job", name, "error", err)
		return
	}
	sc.logger.Info("scheduled job finished", "job", name, "took", sc.clock.Since(start))
}

// newTicker returns nil for a zero interval, which disables the job: a nil
// ticker's channel is nil and never fires in the select.
func (sc *Scheduler) newTicker(interval time.Duration) clockwork.Ticker {
	if interval <= 0 {
		return nil
	}
	return sc.clock.NewTicker(interval)
}

func chanOf(t clockwork.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}

func stopTicker(t clockwork.Ticker) {
	if t != nil {
		t.Stop()
	}
}
