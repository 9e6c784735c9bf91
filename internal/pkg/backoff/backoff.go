// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package backoff provides exponential backoff with jitter for retrying operations.
package backoff

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy describes how many times and how long to wait between attempts.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialDelay is the base delay before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps the base delay between attempts.
	MaxDelay time.Duration
}

// Validate returns an error if the policy cannot be used.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.InitialDelay < 0 || p.MaxDelay < 0 {
		return errors.New("retry delays must not be negative")
	}
	if p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("max delay %s is less than initial delay %s", p.MaxDelay, p.InitialDelay)
	}
	return nil
}

// Delay returns the base delay before the attempt following the given zero-based attempt.
//
// The delay doubles per attempt starting from InitialDelay and is capped at MaxDelay.
// Jitter is applied by Retry, not here.
func (p Policy) Delay(attempt int) time.Duration {
	delay := p.InitialDelay
	for range attempt {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(delay, p.MaxDelay)
}

// Retry calls f repeatedly until it succeeds, returns a non-retryable error,
// or the maximum number of attempts is reached. Between attempts, it waits with
// exponential backoff and jitter.
//
// f returns the result, whether the error is retryable, and any error.
// If retryable is true and err is non-nil, Retry will wait and try again.
// If retryable is false, Retry returns immediately with the result and error.
func Retry[T any](
	ctx context.Context,
	policy Policy,
	f func(ctx context.Context, attempt int) (T, bool, error),
) (T, error) {
	var zero T
	if err := policy.Validate(); err != nil {
		return zero, err
	}
	for attempt := range policy.MaxAttempts {
		result, retryable, err := f(ctx, attempt)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return zero, err
		}
		// Don't wait after the last attempt.
		if attempt == policy.MaxAttempts-1 {
			return zero, fmt.Errorf("failed after %d attempts: %w", policy.MaxAttempts, err)
		}
		if err := sleep(ctx, jitter(policy.Delay(attempt))); err != nil {
			return zero, err
		}
	}
	return zero, fmt.Errorf("failed after %d attempts", policy.MaxAttempts)
}

// *** PRIVATE ***

// jitter returns a random duration between delay/2 and delay.
func jitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return delay/2 + time.Duration(rand.Int64N(int64(delay/2+1)))
}

func sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
