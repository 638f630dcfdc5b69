// Package retry provides the bounded exponential-backoff wrapper shared by
// the side-effecting executors (alert delivery and durable persistence).
//
// The model-call path has its own retry logic tuned for rate limits; this
// package covers infrastructure operations where the policy is simpler:
// a fixed attempt budget, exponential delay, and a designated
// service-unavailable error class that is never retried.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrServiceUnavailable marks an outage-class failure. Operations wrap their
// provider's unavailability signal with this sentinel; Do fails fast on it
// instead of burning the attempt budget against a down service.
var ErrServiceUnavailable = errors.New("service unavailable")

// Config holds retry parameters for an executor operation.
type Config struct {
	MaxAttempts int           // Total attempts including the first (default: 3)
	BaseDelay   time.Duration // Delay before attempt 2; doubles each attempt (default: 1s)
}

// DefaultConfig returns the retry policy used by both executors.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Do executes op with bounded exponential backoff. The delay before attempt
// n+1 is BaseDelay * 2^(n-1). A service-unavailable error returns
// immediately, unwrapped by attempt counting, so callers can distinguish it
// with errors.Is. Context cancellation during backoff aborts the loop.
func Do(ctx context.Context, cfg Config, operation string, op func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					"operation", operation,
					"attempt", attempt)
			}
			return nil
		}

		if errors.Is(err, ErrServiceUnavailable) {
			slog.Error("operation failed with service unavailable, not retrying",
				"operation", operation,
				"error", err)
			return err
		}

		lastErr = err
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.BaseDelay * (1 << (attempt - 1))
		slog.Warn("operation failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s canceled during backoff: %w", operation, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, cfg.MaxAttempts, lastErr)
}
