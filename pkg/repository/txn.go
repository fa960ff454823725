package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls conflict retry behavior for transactional units of
// work.
type RetryConfig struct {
	// MaxTries bounds the number of attempts, including the first.
	// Default: 4
	MaxTries uint

	// InitialInterval is the first backoff delay.
	// Default: 50ms
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay.
	// Default: 1 second
	MaxInterval time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxTries:        4,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// RunInTransaction executes fn as one unit of work, retrying with
// exponential backoff while fn fails with a conflict. Any other error is
// permanent and returned immediately. The caller's fn must be safe to
// re-execute from the top.
func RunInTransaction(ctx context.Context, cfg *RetryConfig, fn func(ctx context.Context) error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := fn(ctx); err != nil {
			if IsConflict(err) {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(cfg.MaxTries))
	return err
}
