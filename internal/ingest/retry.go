package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
)

// Policy controls provider retry behavior. Attempt n (zero-based) waits
// Base·2^n before running again. Only transient errors are retried;
// validation, configuration, and not-found errors surface immediately.
type Policy struct {
	MaxAttempts int
	Base        time.Duration
}

// DefaultPolicy mirrors the provider task retry settings: three attempts
// spaced 60s, 120s apart.
var DefaultPolicy = Policy{MaxAttempts: 3, Base: 60 * time.Second}

// Do runs fn up to MaxAttempts times. The last error is returned when every
// attempt fails or when a non-transient error stops the loop early.
func (p Policy) Do(ctx context.Context, logger *slog.Logger, op string, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := p.Base << (attempt - 1)
			logger.Warn("retrying provider call", "op", op, "attempt", attempt+1, "wait", wait, "error", err)
			if !sleepWithContext(ctx, wait) {
				return ctx.Err()
			}
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsTransient(err) {
			return err
		}
	}
	return err
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
