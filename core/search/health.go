package search

import (
	"context"
	"errors"
	"time"

	"parent-reconciler/core/retry"

	"go.uber.org/zap"
)

// CheckHealth polls hc until it reports healthy, retrying while the backend is unavailable
// or not yet healthy. A backend that answers but never becomes healthy is logged and
// reported as (false, nil); a backend that stays unreachable returns the last error.
func CheckHealth(ctx context.Context, hc HealthChecker, attempts int, delay time.Duration, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	healthy, err := retry.Do(ctx, retry.Policy[bool]{
		MaxAttempts: attempts,
		Retryable:   []error{ErrBackendUnavailable},
		Accept:      func(ok bool) bool { return ok },
		Delay:       delay,
		Description: "record store health",
		OnRetry: func(attempt int, err error, wait time.Duration) {
			logger.Warn("Record store not ready, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", wait),
				zap.Error(err),
			)
		},
	}, hc.Healthy)

	if errors.Is(err, retry.ErrNotAccepted) {
		logger.Warn("Record store did not report healthy", zap.Int("attempts", attempts))
		return false, nil
	}
	return healthy, err
}
