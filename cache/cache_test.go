package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Followers int64 `json:"followers"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return New(rdb, nil), mr
}

func TestCache_SetGet_Idempotent(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, NamespaceProfile, "BrandX", payload{Followers: 100})

	var got payload
	ok, err := c.Get(ctx, NamespaceProfile, "brandx", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(100), got.Followers)
}

func TestCache_Miss(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	var got payload
	ok, err := c.Get(context.Background(), NamespaceProfile, "nobody", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, NamespaceMedia, "brandx", payload{Followers: 5})
	mr.FastForward(MediaTTL + time.Second)

	var got payload
	ok, err := c.Get(ctx, NamespaceMedia, "brandx", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_NilRedis_AlwaysMiss(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	c.Set(context.Background(), NamespaceProfile, "x", payload{Followers: 1})

	var got payload
	ok, err := c.Get(context.Background(), NamespaceProfile, "x", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
