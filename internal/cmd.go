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

// Package internal provides utilities that are only intended to be used by the fashion-influencer-matcher app itself.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/redis/go-redis/v9"

	"github.com/jdh4601/fashion-influencer-matcher/cache"
	"github.com/jdh4601/fashion-influencer-matcher/database"
	"github.com/jdh4601/fashion-influencer-matcher/discovery"
	"github.com/jdh4601/fashion-influencer-matcher/ratelimit"
)

const (
	discoveryTimeout = 30 // The discovery client's per-request timeout, in seconds; retries run outside it.
	psqlMaxPoolSize  = 5  // Postgres pool size (max)
	psqlMinPoolSize  = 2  // Postgres pool size (min)
)

// Config holds every environment-driven setting the app needs at boot.
type Config struct {
	DiscoveryBaseURL  string        `env:"DISCOVERY_BASE_URL" envDefault:"https://graph.facebook.com/v18.0"`
	DiscoveryAccount  string        `env:"DISCOVERY_BUSINESS_ACCOUNT_ID"`
	DiscoveryToken    string        `env:"DISCOVERY_ACCESS_TOKEN"`
	HourlyCallCeiling int           `env:"HOURLY_CALL_CEILING" envDefault:"200"`
	CacheProfileTTL   time.Duration `env:"CACHE_PROFILE_TTL" envDefault:"6h"`
	CacheMediaTTL     time.Duration `env:"CACHE_MEDIA_TTL" envDefault:"1h"`
	RetentionDays     int           `env:"RETENTION_DAYS" envDefault:"90"`
	RedisAddr         string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	PostgresUser      string        `env:"POSTGRES_USER" envDefault:"postgresuser"`
	PostgresPassword  string        `env:"POSTGRES_PASSWORD" envDefault:"postgressecret"`
	PostgresDB        string        `env:"POSTGRES_DB" envDefault:"database001"`
	PostgresHost      string        `env:"POSTGRES_HOST" envDefault:"127.0.0.1"`
}

// LoadConfig parses environment variables into a Config, falling back to
// struct-tag defaults when a variable is unset.
func LoadConfig() (Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}

	return cfg, nil
}

// Database builds a DSN to create and return a new database connection.
func Database(ctx context.Context, logger *slog.Logger, cfg Config) *database.Database {
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?pool_max_conns=%d&pool_min_conns=%d",
		cfg.PostgresUser,
		cfg.PostgresPassword,
		net.JoinHostPort(cfg.PostgresHost, "5432"),
		cfg.PostgresDB,
		psqlMaxPoolSize,
		psqlMinPoolSize,
	)

	return database.
		NewPool(ctx, dsn).
		WithLogger(logger)
}

// Logger sets up a new slog.Logger and returns it.
func Logger(debug bool) *slog.Logger {
	lvl := new(slog.LevelVar)
	opts := &slog.HandlerOptions{
		AddSource:   debug,
		Level:       lvl,
		ReplaceAttr: nil,
	}

	if !debug {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	lvl.Set(slog.LevelDebug)

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// Redis sets up a new go-redis client. Callers should treat a failing Redis
// as a soft dependency: cache and rate limiter both fall back gracefully.
func Redis(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{ //nolint:exhaustruct // Defaults are ok
		Addr: cfg.RedisAddr,
	})
}

// Discovery sets up a new discovery.Client and returns it.
func Discovery(logger *slog.Logger, cfg Config) *discovery.Client {
	httpClient := &http.Client{Timeout: discoveryTimeout * time.Second} //nolint:exhaustruct // Defaults are ok

	client := discovery.NewClient(httpClient, logger, cfg.DiscoveryAccount, cfg.DiscoveryToken)

	if cfg.DiscoveryBaseURL != "" {
		if err := client.BaseURL(cfg.DiscoveryBaseURL); err != nil {
			panic(err)
		}
	}

	return client
}

// RateLimiter sets up the token-bucket limiter guarding outbound discovery calls.
func RateLimiter(rdb *redis.Client, logger *slog.Logger, cfg Config) *ratelimit.Limiter {
	return ratelimit.New(rdb, logger, "discovery:hourly", cfg.HourlyCallCeiling, time.Hour)
}

// Cache sets up the two-tier profile/media cache.
func Cache(rdb *redis.Client, logger *slog.Logger) *cache.Cache {
	return cache.New(rdb, logger)
}
