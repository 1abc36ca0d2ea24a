package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdh4601/fashion-influencer-matcher/discovery"
)

func TestDo_TerminalPropagatesImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(context.Background(), DefaultProfilePolicy(), func(context.Context) (int, error) {
		calls++
		return 0, &discovery.AccountNotFoundError{Handle: "x"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, discovery.ErrAccountNotFound)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Do(context.Background(), Policy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Second, ExpBase: 2}, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries_SurfacesLastError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(context.Background(), Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, ExpBase: 2}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("always fails")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestDo_RateLimited_SleepsRetryAfterCapped(t *testing.T) {
	t.Parallel()

	calls := 0
	start := time.Now()

	_, err := Do(context.Background(), Policy{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond, ExpBase: 2}, func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &discovery.RateLimitedError{RetryAfter: time.Hour}
		}
		return 1, nil
	})

	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Less(t, elapsed, time.Second, "retry-after must be capped at max_delay, not the full hour")
}
