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

	"github.com/jackc/pgx/v5"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
)

// InsertJobEvent registers a new event in the jobs' audit log table.
func (d *Database) InsertJobEvent(ctx context.Context, jobID int64, event string) error {
	sqlEvent := `INSERT INTO jobs_events (event_msg, job_id, ts) VALUES ($1, $2, NOW())`

	if err := d.querier.Execute(ctx, d, sqlEvent, event, jobID); err != nil {
		return err //nolint:wrapcheck // Error from the same package
	}

	return nil
}

// NextJob atomically claims the oldest queued job and marks it running,
// so two worker processes never pick up the same job.
func (d *Database) NextJob(ctx context.Context) (*models.Job, error) {
	sql := `
	UPDATE jobs SET
		status = $1,
		started_at = NOW(),
		attempts = attempts + 1
	WHERE id = (
		SELECT id FROM jobs
		WHERE status = $2
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	RETURNING *
	`

	job, err := d.querier.SelectJob(ctx, d, sql, models.JobStatusRunning, models.JobStatusQueued)

	switch {
	case err == nil:
		return job, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil //nolint:nilnil // It means not found.
	default:
		return nil, err //nolint:wrapcheck // Error from the same package
	}
}

// FinishJob marks a job done and stores its API-call counter.
func (d *Database) FinishJob(ctx context.Context, jobID int64, apiCallsUsed int32) error {
	sql := `
		UPDATE jobs SET
			status = $1,
			finished_at = NOW(),
			api_calls_used = $2
		WHERE id = $3
	`

	if err := d.querier.Execute(ctx, d, sql, models.JobStatusDone, apiCallsUsed, jobID); err != nil {
		return err //nolint:wrapcheck // Error from the same package
	}

	return nil
}

// FailJob marks a job failed and records the terminal error.
func (d *Database) FailJob(ctx context.Context, jobID int64, cause string) error {
	sql := `
		UPDATE jobs SET
			status = $1,
			finished_at = NOW(),
			error = $2
		WHERE id = $3
	`

	if err := d.querier.Execute(ctx, d, sql, models.JobStatusFailed, cause, jobID); err != nil {
		return err //nolint:wrapcheck // Error from the same package
	}

	return nil
}

// RequeueJob resets a job back to queued, for dispatch-level retry.
func (d *Database) RequeueJob(ctx context.Context, jobID int64) error {
	sql := `UPDATE jobs SET status = $1, started_at = NULL WHERE id = $2`

	if err := d.querier.Execute(ctx, d, sql, models.JobStatusQueued, jobID); err != nil {
		return err //nolint:wrapcheck // Error from the same package
	}

	return nil
}

// StoreResults persists a job's scored brand/influencer pairings.
func (d *Database) StoreResults(ctx context.Context, results []models.AnalysisResult) error {
	sql := `
		INSERT INTO results (
			job_id, brand_handle, influencer_handle,
			similarity_score, engagement_score, category_score, final_score,
			grade, common_hashtags, top_posts, collab_signals, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`

	for _, r := range results {
		err := d.querier.Execute(ctx, d, sql,
			r.JobID, r.BrandHandle, r.InfluencerHandle,
			r.SimilarityScore, r.EngagementScore, r.CategoryScore, r.FinalScore,
			r.Grade, r.CommonHashtags, r.TopPosts, r.CollabSignals,
		)
		if err != nil {
			return err //nolint:wrapcheck // Error from the same package
		}
	}

	return nil
}

// FindResults returns the scored pairings for a job, ordered by final score descending.
func (d *Database) FindResults(ctx context.Context, jobID int64) ([]models.AnalysisResult, error) {
	sql := `
		SELECT
			id, job_id, brand_handle, influencer_handle,
			similarity_score, engagement_score, category_score, final_score,
			grade, common_hashtags, top_posts, collab_signals, created_at
		FROM results
		WHERE job_id = $1
		ORDER BY final_score DESC
	`

	results, err := d.querier.SelectResults(ctx, d, sql, jobID)
	if err != nil {
		return nil, err //nolint:wrapcheck // Error from the same package
	}

	return results, nil
}
