// File: ring/options.go
// Author: momentics <momentics@gmail.com>

package ring

import (
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/internal/retry"
)

// DefaultSize is the capacity requested by callers with no better idea.
const DefaultSize = 640 * 1024

// Option configures initialization.
type Option func(*config)

type config struct {
	log   *zap.Logger
	retry retry.Config
}

func newConfig(opts []Option) config {
	cfg := config{
		log:   zap.NewNop(),
		retry: retry.Once(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger for setup diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRetry retries api.ErrCodeTryAgain failures up to attempts times in
// total. A zero backoff retries immediately, otherwise the delay doubles
// after each attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *config) {
		c.retry = retry.Config{
			MaxAttempts:  attempts,
			InitialDelay: backoff,
			MaxDelay:     64 * backoff,
			Multiplier:   2,
			Retryable:    api.IsTemporary,
		}
	}
}
