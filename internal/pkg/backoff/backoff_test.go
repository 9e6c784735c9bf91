// Copyright 2026 Peter Edge
//
// All rights reserved.

package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPolicyDelay(t *testing.T) {
	t.Parallel()
	policy := Policy{
		MaxAttempts:  5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
	}
	require.Equal(t, 2*time.Second, policy.Delay(0))
	require.Equal(t, 4*time.Second, policy.Delay(1))
	require.Equal(t, 8*time.Second, policy.Delay(2))
	require.Equal(t, 10*time.Second, policy.Delay(3))
	require.Equal(t, 10*time.Second, policy.Delay(40))
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, Policy{MaxAttempts: 1}.Validate())
	require.Error(t, Policy{}.Validate())
	require.Error(t, Policy{MaxAttempts: 1, InitialDelay: time.Second}.Validate())
	require.Error(t, Policy{MaxAttempts: 1, InitialDelay: -time.Second}.Validate())
}

func TestRetry(t *testing.T) {
	t.Parallel()
	policy := Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}
	errTransient := errors.New("transient")
	errPermanent := errors.New("permanent")

	var calls int
	result, err := Retry(context.Background(), policy, func(_ context.Context, attempt int) (int, bool, error) {
		calls++
		if attempt < 2 {
			return 0, true, errTransient
		}
		return 42, false, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, 3, calls)

	calls = 0
	_, err = Retry(context.Background(), policy, func(context.Context, int) (int, bool, error) {
		calls++
		return 0, false, errPermanent
	})
	require.ErrorIs(t, err, errPermanent)
	require.Equal(t, 1, calls)

	calls = 0
	_, err = Retry(context.Background(), policy, func(context.Context, int) (int, bool, error) {
		calls++
		return 0, true, errTransient
	})
	require.ErrorIs(t, err, errTransient)
	require.ErrorContains(t, err, "failed after 3 attempts")
	require.Equal(t, 3, calls)
}

func TestRetryContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{
		MaxAttempts:  3,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
	}
	_, err := Retry(ctx, policy, func(context.Context, int) (int, bool, error) {
		cancel()
		return 0, true, errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
}
