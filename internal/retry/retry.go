// Package retry runs an operation a bounded number of times with optional
// exponential backoff. Only errors accepted by the Config's Retryable
// predicate are retried; everything else is returned at once.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config provides retry configuration.
type Config struct {
	MaxAttempts  int           // total attempts, values below 1 mean one attempt
	InitialDelay time.Duration // zero retries immediately
	MaxDelay     time.Duration // upper bound for the backoff, zero means unbounded
	Multiplier   float64       // backoff multiplier, values below 1 keep the delay constant
	Retryable    func(error) bool
	OnRetry      func(attempt int, err error)
}

// Once returns a config that runs the operation a single time.
func Once() Config {
	return Config{MaxAttempts: 1}
}

// Immediate retries up to attempts times without sleeping.
func Immediate(attempts int, retryable func(error) bool) Config {
	return Config{MaxAttempts: attempts, Retryable: retryable}
}

// Do executes fn until it succeeds, returns a non-retryable error, the
// attempts are exhausted or ctx is done.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.InitialDelay < 0 || cfg.MaxDelay < 0 {
		return errors.New("retry: negative delay")
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if cfg.Retryable == nil || !cfg.Retryable(err) || attempt == cfg.MaxAttempts {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, ctx.Err())
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
			case <-timer.C:
			}
			delay = next(delay, cfg)
		}
	}
	return lastErr
}

func next(delay time.Duration, cfg Config) time.Duration {
	if cfg.Multiplier > 1 {
		grown := float64(delay) * cfg.Multiplier
		if grown >= float64(1<<63-1) {
			delay = 1<<63 - 1
		} else {
			delay = time.Duration(grown)
		}
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
