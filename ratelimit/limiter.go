/*
 * Instaman - Simple Instagram account manager.
 *
 * Copyright (C) 2024 Luca Contini
 *
 * This program is free software: you can redistribute it and/or modify it
 * under the terms of the GNU General Public License as published by the Free
 * Software Foundation, either version 3 of the License, or (at your option)
 * any later version.
 *
 * This program is distributed in the hope that it will be useful, but WITHOUT
 * ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
 * FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for
 * more details.
 *
 * You should have received a copy of the GNU General Public License along with
 * this program. If not, see <http://www.gnu.org/licenses/>.
 */

// Package ratelimit implements a distributed token-bucket limiter guarding
// calls to the discovery API, backed by Redis with a local in-process
// fallback when Redis is unreachable.
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTimeout is returned by Acquire when blocking exceeds the caller's timeout.
var ErrTimeout = errors.New("rate limiter acquire timed out")

// RateLimitedError carries the required backoff before the next attempt.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return "rate limited"
}

// checkAndConsume is the atomic primitive: given the current (tokens,
// last_refill) state and a request for n tokens, return the updated state
// and whether the request was allowed. It is evaluated server-side by the
// Lua script for the Redis path, and under a mutex for the local fallback,
// so that it is linearizable regardless of backend.
//
// Refill is continuous: tokens = min(max, tokens + (now-last_refill)/window*max).
const luaCheckAndConsume = `
local key = KEYS[1]
local max_tokens = tonumber(ARGV[1])
local window_seconds = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local n = tonumber(ARGV[4])

local tokens = max_tokens
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] then tokens = tonumber(data[1]) end
if data[2] then last_refill = tonumber(data[2]) end

local elapsed = now - last_refill
if elapsed < 0 then elapsed = 0 end

tokens = math.min(max_tokens, tokens + (elapsed / window_seconds) * max_tokens)
last_refill = now

local allowed = 0
local retry_after = 0

if tokens >= n then
  tokens = tokens - n
  allowed = 1
else
  retry_after = math.ceil((n - tokens) / max_tokens * window_seconds)
end

redis.call("HMSET", key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, window_seconds * 2)

return { allowed, tokens, retry_after }
`

// Limiter is a distributed token-bucket rate limiter.
type Limiter struct {
	redis  *redis.Client
	script *redis.Script
	logger *slog.Logger

	bucketKey  string
	maxTokens  float64
	window     time.Duration

	local     *localBucket
}

type localBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// New constructs a Limiter. rdb may be nil, in which case the limiter
// operates in local-only mode from the start (still correct within one
// process).
func New(rdb *redis.Client, logger *slog.Logger, bucketKey string, maxTokens int, window time.Duration) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Limiter{
		redis:     rdb,
		script:    redis.NewScript(luaCheckAndConsume),
		logger:    logger,
		bucketKey: bucketKey,
		maxTokens: float64(maxTokens),
		window:    window,
		local: &localBucket{
			tokens:     float64(maxTokens),
			lastRefill: time.Now(),
		},
	}
}

// Acquire attempts to consume n tokens. If block is false, it returns
// immediately with RateLimitedError on insufficient tokens. If block is
// true, it sleeps min(retry_after, 10s) and retries until it succeeds or
// timeout elapses (timeout <= 0 means block indefinitely).
func (l *Limiter) Acquire(ctx context.Context, n int, block bool, timeout time.Duration) error {
	deadline := time.Time{}
	if block && timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		allowed, retryAfter, err := l.checkAndConsume(ctx, n)
		if err != nil {
			return err
		}

		if allowed {
			return nil
		}

		if !block {
			return &RateLimitedError{RetryAfter: retryAfter}
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return ErrTimeout
		}

		sleep := retryAfter
		if sleep > 10*time.Second {
			sleep = 10 * time.Second
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// checkAndConsume runs the atomic check against Redis, falling back to the
// local bucket (with a logged warning) on any Redis failure.
func (l *Limiter) checkAndConsume(ctx context.Context, n int) (bool, time.Duration, error) {
	if l.redis != nil {
		allowed, tokens, retryAfter, err := l.runRedis(ctx, n)
		if err == nil {
			_ = tokens
			return allowed, retryAfter, nil
		}

		l.logger.Warn("rate limiter redis unavailable, degrading to local bucket", "error", err)
	}

	return l.runLocal(n), l.localRetryAfter(n), nil
}

func (l *Limiter) runRedis(ctx context.Context, n int) (bool, float64, time.Duration, error) {
	now := float64(time.Now().UnixNano()) / 1e9
	windowSeconds := l.window.Seconds()

	res, err := l.script.Run(ctx, l.redis, []string{l.bucketKey}, l.maxTokens, windowSeconds, now, n).Result()
	if err != nil {
		return false, 0, 0, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) < 3 {
		return false, 0, 0, errors.New("unexpected rate limiter script result")
	}

	allowed := toInt64(vals[0]) == 1
	tokens := toFloat64(vals[1])
	retryAfterSec := toFloat64(vals[2])

	return allowed, tokens, time.Duration(retryAfterSec * float64(time.Second)), nil
}

func (l *Limiter) runLocal(n int) bool {
	l.local.mu.Lock()
	defer l.local.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.local.lastRefill).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	l.local.tokens = math.Min(l.maxTokens, l.local.tokens+(elapsed/l.window.Seconds())*l.maxTokens)
	l.local.lastRefill = now

	if l.local.tokens >= float64(n) {
		l.local.tokens -= float64(n)
		return true
	}

	return false
}

func (l *Limiter) localRetryAfter(n int) time.Duration {
	l.local.mu.Lock()
	defer l.local.mu.Unlock()

	shortage := float64(n) - l.local.tokens
	if shortage <= 0 {
		return 0
	}

	retrySec := math.Ceil(shortage / l.maxTokens * l.window.Seconds())

	return time.Duration(retrySec) * time.Second
}

// Warm seeds the Redis-backed bucket from a previously persisted state (see
// database.RateLimitBucket), so that a freshly started Redis instance does
// not silently reset the hourly ceiling back to full capacity.
func (l *Limiter) Warm(ctx context.Context, tokens float64, lastRefill time.Time) error {
	if l == nil || l.redis == nil {
		return nil
	}

	lastRefillSec := float64(lastRefill.UnixNano()) / 1e9

	return l.redis.HMSet(ctx, l.bucketKey, "tokens", tokens, "last_refill", lastRefillSec).Err()
}

// Snapshot reads the bucket's current tokens/last-refill without consuming
// any tokens, for mirroring into database.RateLimitBucket. Falls back to the
// local bucket's state when Redis is unavailable.
func (l *Limiter) Snapshot(ctx context.Context) (tokens float64, lastRefill time.Time, err error) {
	if l.redis == nil {
		return l.localSnapshot()
	}

	res, err := l.redis.HMGet(ctx, l.bucketKey, "tokens", "last_refill").Result()
	if err != nil {
		l.logger.Warn("rate limiter redis unavailable, snapshotting local bucket", "error", err)

		return l.localSnapshot()
	}

	if len(res) != 2 || res[0] == nil || res[1] == nil {
		return l.localSnapshot()
	}

	tokensStr, _ := res[0].(string)
	lastRefillStr, _ := res[1].(string)

	tokens, err = strconv.ParseFloat(tokensStr, 64)
	if err != nil {
		return l.localSnapshot()
	}

	lastRefillSec, err := strconv.ParseFloat(lastRefillStr, 64)
	if err != nil {
		return l.localSnapshot()
	}

	return tokens, time.Unix(0, int64(lastRefillSec*float64(time.Second))), nil
}

func (l *Limiter) localSnapshot() (float64, time.Time, error) {
	l.local.mu.Lock()
	defer l.local.mu.Unlock()

	return l.local.tokens, l.local.lastRefill, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return 0
	}
}
