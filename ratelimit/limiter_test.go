package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, maxTokens int, window time.Duration) (*Limiter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := New(rdb, nil, "test-bucket", maxTokens, window)

	return l, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestAcquire_NonBlocking_Ceiling(t *testing.T) {
	t.Parallel()

	l, cleanup := newTestLimiter(t, 2, time.Hour)
	defer cleanup()

	ctx := context.Background()

	assert.NoError(t, l.Acquire(ctx, 1, false, 0))
	assert.NoError(t, l.Acquire(ctx, 1, false, 0))

	err := l.Acquire(ctx, 1, false, 0)
	require.Error(t, err)

	var rle *RateLimitedError
	require.ErrorAs(t, err, &rle)
	assert.GreaterOrEqual(t, rle.RetryAfter, 30*time.Minute)
}

func TestAcquire_LocalFallback_WhenRedisNil(t *testing.T) {
	t.Parallel()

	l := New(nil, nil, "test-bucket", 1, time.Hour)
	ctx := context.Background()

	assert.NoError(t, l.Acquire(ctx, 1, false, 0))

	err := l.Acquire(ctx, 1, false, 0)
	require.Error(t, err)

	var rle *RateLimitedError
	require.ErrorAs(t, err, &rle)
}

func TestAcquire_RefillMonotonicity(t *testing.T) {
	t.Parallel()

	l := New(nil, nil, "test-bucket", 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx, 10, false, 0))

	l.local.mu.Lock()
	l.local.lastRefill = time.Now().Add(-30 * time.Second)
	l.local.mu.Unlock()

	// Half the window elapsed ⇒ half the bucket refilled (5 tokens); asking
	// for 6 must still fail, asking for 5 must succeed.
	err := l.Acquire(ctx, 6, false, 0)
	require.Error(t, err)

	err = l.Acquire(ctx, 5, false, 0)
	assert.NoError(t, err)
}

func TestWarmThenSnapshot_Redis(t *testing.T) {
	t.Parallel()

	l, cleanup := newTestLimiter(t, 10, time.Hour)
	defer cleanup()

	ctx := context.Background()
	want := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.Warm(ctx, 7.5, want))

	tokens, lastRefill, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, tokens, 0.001)
	assert.WithinDuration(t, want, lastRefill, time.Second)
}

func TestSnapshot_LocalFallback_WhenRedisNil(t *testing.T) {
	t.Parallel()

	l := New(nil, nil, "test-bucket", 4, time.Hour)

	tokens, _, err := l.Snapshot(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 4, tokens, 0.001)
}
