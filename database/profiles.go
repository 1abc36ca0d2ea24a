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

package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
)

// UpsertBrandProfile stores or refreshes a brand's durable profile snapshot.
func (d *Database) UpsertBrandProfile(ctx context.Context, p models.BrandProfile) error {
	sql := `
		INSERT INTO brand_profiles (
			handle, name, followers_count, biography, profile_picture_url,
			categories, hashtags, keywords, fetched_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (handle) DO UPDATE SET
			name = $2, followers_count = $3, biography = $4, profile_picture_url = $5,
			categories = $6, hashtags = $7, keywords = $8, fetched_at = NOW()
	`

	return Execute(ctx, d, sql, p.Handle, p.Name, p.FollowersCount, p.Biography, p.ProfilePictureURL, p.Categories, p.Hashtags, p.Keywords) //nolint:wrapcheck
}

// FindBrandProfile returns a brand's last stored profile snapshot.
func (d *Database) FindBrandProfile(ctx context.Context, handle string) (*models.BrandProfile, error) {
	sql := `
		SELECT handle, name, followers_count, biography, profile_picture_url, categories, hashtags, keywords, fetched_at
		FROM brand_profiles WHERE handle = $1
	`

	p, err := SelectOne[models.BrandProfile](ctx, d, sql, handle)

	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil //nolint:nilnil // It means not found.
	default:
		return nil, errors.Join(ErrDriverFailure, err)
	}
}

// UpsertInfluencerProfile stores or refreshes an influencer's durable profile snapshot.
func (d *Database) UpsertInfluencerProfile(ctx context.Context, p models.InfluencerProfile) error {
	sql := `
		INSERT INTO influencer_profiles (
			handle, name, followers_count, biography, profile_picture_url,
			categories, hashtags, keywords, tier, fetched_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (handle) DO UPDATE SET
			name = $2, followers_count = $3, biography = $4, profile_picture_url = $5,
			categories = $6, hashtags = $7, keywords = $8, tier = $9, fetched_at = NOW()
	`

	return Execute(ctx, d, sql, p.Handle, p.Name, p.FollowersCount, p.Biography, p.ProfilePictureURL, p.Categories, p.Hashtags, p.Keywords, p.Tier) //nolint:wrapcheck
}

// StoreMediaSnapshots persists the fetched media for a handle.
func (d *Database) StoreMediaSnapshots(ctx context.Context, media []models.MediaSnapshot) error {
	sql := `
		INSERT INTO media_snapshots (handle, media_id, caption, like_count, comments_count, media_type, posted_at, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (handle, media_id) DO UPDATE SET
			caption = $3, like_count = $4, comments_count = $5, media_type = $6, posted_at = $7, fetched_at = NOW()
	`

	for _, m := range media {
		if err := Execute(ctx, d, sql, m.Handle, m.MediaID, m.Caption, m.LikeCount, m.CommentsCount, m.MediaType, m.PostedAt); err != nil {
			return errors.Join(ErrDriverFailure, err)
		}
	}

	return nil
}

// UpsertHashtagAggregates replaces a handle's hashtag frequency table.
func (d *Database) UpsertHashtagAggregates(ctx context.Context, handle string, counts map[string]int32) error {
	if err := Execute(ctx, d, `DELETE FROM hashtag_aggregates WHERE handle = $1`, handle); err != nil {
		return errors.Join(ErrDriverFailure, err)
	}

	sql := `INSERT INTO hashtag_aggregates (handle, hashtag, count, updated_at) VALUES ($1, $2, $3, NOW())`

	for tag, count := range counts {
		if err := Execute(ctx, d, sql, handle, tag, count); err != nil {
			return errors.Join(ErrDriverFailure, err)
		}
	}

	return nil
}

// SaveRateLimitBucket mirrors a token bucket's state into Postgres so it can
// be Warmed back into ratelimit.Limiter across process restarts.
func (d *Database) SaveRateLimitBucket(ctx context.Context, b models.RateLimitBucket) error {
	sql := `
		INSERT INTO rate_limit_buckets (bucket_key, tokens, last_refill)
		VALUES ($1, $2, $3)
		ON CONFLICT (bucket_key) DO UPDATE SET tokens = $2, last_refill = $3
	`

	return Execute(ctx, d, sql, b.BucketKey, b.Tokens, b.LastRefill) //nolint:wrapcheck
}

// LoadRateLimitBucket returns a bucket's last persisted state, if any.
func (d *Database) LoadRateLimitBucket(ctx context.Context, bucketKey string) (*models.RateLimitBucket, error) {
	sql := `SELECT bucket_key, tokens, last_refill FROM rate_limit_buckets WHERE bucket_key = $1`

	b, err := SelectOne[models.RateLimitBucket](ctx, d, sql, bucketKey)

	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil //nolint:nilnil // It means not found.
	default:
		return nil, errors.Join(ErrDriverFailure, err)
	}
}

// CleanupExpiredData deletes media snapshots and hashtag aggregates older
// than olderThan, and finished jobs older than olderThan, per the scheduled
// retention sweep.
func (d *Database) CleanupExpiredData(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	stmts := []string{
		`DELETE FROM media_snapshots WHERE fetched_at < $1`,
		`DELETE FROM hashtag_aggregates WHERE updated_at < $1`,
		`DELETE FROM jobs WHERE status IN ('done', 'failed') AND finished_at < $1`,
	}

	for _, sql := range stmts {
		if err := Execute(ctx, d, sql, cutoff); err != nil {
			return errors.Join(ErrDriverFailure, err)
		}
	}

	return nil
}
