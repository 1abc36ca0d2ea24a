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

// The main package for the worker executable.
package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/jdh4601/fashion-influencer-matcher/analysis/orchestrator"
	"github.com/jdh4601/fashion-influencer-matcher/database"
	"github.com/jdh4601/fashion-influencer-matcher/internal"
	"github.com/jdh4601/fashion-influencer-matcher/ratelimit"
	"github.com/jdh4601/fashion-influencer-matcher/service"
)

// Boot sets up the worker and its dependencies.
func Boot(ctx context.Context, devMode bool) (*service.JobExecutor, *internal.Config, *slog.Logger) {
	logger := internal.Logger(devMode)

	cfg, err := internal.LoadConfig()
	if err != nil {
		logger.Error("could not load config", "error", err)
		panic(err)
	}

	db := internal.Database(ctx, logger, cfg)
	rdb := internal.Redis(cfg)

	discoveryClient := internal.Discovery(logger, cfg)
	limiter := internal.RateLimiter(rdb, logger, cfg)
	profileCache := internal.Cache(rdb, logger)

	warmRateLimiter(ctx, db, limiter, logger)

	orch := orchestrator.New(discoveryClient, profileCache, limiter, logger)
	executor := service.NewJobExecutor(db, orch, limiter, logger)

	return executor, &cfg, logger
}

func main() {
	devMode := flag.Bool("dev", false, "enable debug logger")
	cleanup := flag.Bool("cleanup", false, "run the retention cleanup once and exit, instead of starting the worker loop")
	flag.Parse()

	ctx := context.Background()

	executor, cfg, logger := Boot(ctx, *devMode)

	if *cleanup {
		runCleanup(ctx, logger, cfg)

		return
	}

	logger.Info("starting worker...")

	executor.Start(ctx)
}

// warmRateLimiter seeds the Redis-backed bucket from its last persisted
// state, so a freshly started Redis instance doesn't silently reset the
// hourly ceiling back to full capacity after a restart.
func warmRateLimiter(ctx context.Context, db *database.Database, limiter *ratelimit.Limiter, logger *slog.Logger) {
	bucket, err := db.LoadRateLimitBucket(ctx, "discovery:hourly")
	if err != nil {
		logger.Warn("could not load persisted rate limit bucket", "error", err)

		return
	}

	if bucket == nil {
		return
	}

	if err := limiter.Warm(ctx, bucket.Tokens, bucket.LastRefill); err != nil {
		logger.Warn("could not warm rate limiter", "error", err)
	}
}

// runCleanup deletes media snapshots, hashtag aggregates and terminal jobs
// older than the configured retention window.
func runCleanup(ctx context.Context, logger *slog.Logger, cfg *internal.Config) {
	db := internal.Database(ctx, logger, *cfg)

	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	if err := db.CleanupExpiredData(ctx, retention); err != nil {
		logger.Error("cleanup failed", "error", err)
		panic(err)
	}

	logger.Info("cleanup complete", "retention_days", cfg.RetentionDays)
}
