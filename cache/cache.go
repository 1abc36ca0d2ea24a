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

// Package cache provides a two-tier TTL'd key/value store for discovery-API
// responses, backed by Redis. Store unavailability degrades to a cache miss,
// never an error, matching the pipeline's "infra unavailability never fails
// the request" contract.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace identifies which TTL tier a key belongs to.
type Namespace string

const (
	NamespaceProfile Namespace = "ig:profile:"
	NamespaceMedia   Namespace = "ig:media:"

	ProfileTTL = 6 * time.Hour
	MediaTTL   = 1 * time.Hour
)

// envelope is the stored value shape: the payload plus bookkeeping timestamps.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Cache is a namespaced, TTL'd Redis-backed key/value store.
type Cache struct {
	redis  *redis.Client
	logger *slog.Logger
}

// New constructs a Cache. rdb may be nil; all operations then behave as a
// permanent miss/no-op, which is the same degraded behavior as a Redis
// outage.
func New(rdb *redis.Client, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{redis: rdb, logger: logger}
}

func (c *Cache) key(ns Namespace, handle string) string {
	return string(ns) + strings.ToLower(strings.TrimSpace(handle))
}

func ttlFor(ns Namespace) time.Duration {
	if ns == NamespaceMedia {
		return MediaTTL
	}

	return ProfileTTL
}

// Get looks up handle in namespace ns and decodes its value into out.
// Returns (false, nil) on a clean miss or any Redis error (degraded mode);
// returns (false, err) only when the stored value itself cannot be decoded.
func (c *Cache) Get(ctx context.Context, ns Namespace, handle string, out interface{}) (bool, error) {
	if c.redis == nil {
		return false, nil
	}

	raw, err := c.redis.Get(ctx, c.key(ns, handle)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		c.logger.Warn("cache unavailable, treating as miss", "error", err)
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return false, err
	}

	if time.Now().After(env.ExpiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, err
	}

	return true, nil
}

// Set stores value under handle in namespace ns with that namespace's TTL.
// Failures are logged and swallowed — a cache write never fails the caller.
func (c *Cache) Set(ctx context.Context, ns Namespace, handle string, value interface{}) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache set: failed to marshal value", "error", err)
		return
	}

	ttl := ttlFor(ns)
	now := time.Now()
	env := envelope{Data: data, CachedAt: now, ExpiresAt: now.Add(ttl)}

	raw, err := json.Marshal(env)
	if err != nil {
		c.logger.Warn("cache set: failed to marshal envelope", "error", err)
		return
	}

	if err := c.redis.Set(ctx, c.key(ns, handle), raw, ttl).Err(); err != nil {
		c.logger.Warn("cache set: redis unavailable", "error", err)
	}
}

// Invalidate removes handle's entry from namespace ns.
func (c *Cache) Invalidate(ctx context.Context, ns Namespace, handle string) {
	if c.redis == nil {
		return
	}

	if err := c.redis.Del(ctx, c.key(ns, handle)).Err(); err != nil {
		c.logger.Warn("cache invalidate: redis unavailable", "error", err)
	}
}

// Stats returns the number of live keys per namespace.
type Stats struct {
	ProfileCount int64
	MediaCount   int64
}

func (c *Cache) Stats(ctx context.Context) Stats {
	if c.redis == nil {
		return Stats{}
	}

	return Stats{
		ProfileCount: c.countKeys(ctx, NamespaceProfile),
		MediaCount:   c.countKeys(ctx, NamespaceMedia),
	}
}

func (c *Cache) countKeys(ctx context.Context, ns Namespace) int64 {
	var count int64
	var cursor uint64

	for {
		keys, next, err := c.redis.Scan(ctx, cursor, string(ns)+"*", 100).Result()
		if err != nil {
			c.logger.Warn("cache stats: redis unavailable", "error", err)
			return count
		}

		count += int64(len(keys))
		cursor = next

		if cursor == 0 {
			break
		}
	}

	return count
}
