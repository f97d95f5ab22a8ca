package ingest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, Base: time.Millisecond}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	calls := 0
	err := p.Do(context.Background(), logger, "op", func(context.Context) error {
		calls++
		return domain.Transientf("still down")
	})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_StopsOnContextCancel(t *testing.T) {
	p := Policy{MaxAttempts: 5, Base: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, logger, "op", func(context.Context) error {
		calls++
		return domain.Transientf("still down")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestScheduler_RunsJobsOnTicks(t *testing.T) {
	env := newTestEnv(t)
	env.createField(t, true)
	env.weather.obs = []domain.WeatherObservation{{Date: time.Now().UTC()}}

	fc := clockwork.NewFakeClock()
	sched := Schedule{
		WeatherInterval:   time.Hour,
		WeatherDays:       3,
		FireCheckInterval: 0, // disabled
		CleanupInterval:   0, // disabled
	}
	sc := NewScheduler(env.service, sched, fc,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sc.Run(ctx)
	}()

	// Wait for the ticker to be registered, then advance past one interval.
	fc.BlockUntil(1)
	fc.Advance(time.Hour)

	require.Eventually(t, func() bool {
		return env.weather.calls >= 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}

func TestScheduler_StopsOnCancelWithoutTicks(t *testing.T) {
	env := newTestEnv(t)
	fc := clockwork.NewFakeClock()
	sc := NewScheduler(env.service, DefaultSchedule, fc,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sc.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
