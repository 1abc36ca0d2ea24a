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

package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/jdh4601/fashion-influencer-matcher/analysis/orchestrator"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
	"github.com/jdh4601/fashion-influencer-matcher/ratelimit"
)

const (
	maxDispatchAttempts = 3               // How many times a job may be re-dequeued after a failure.
	dispatchCooldown    = 60 * time.Second // Pause before a failed job becomes eligible again.
	jobTimeout          = 10 * time.Minute // Per-job wall-clock budget.
	pollInterval        = time.Minute      // How often to check for a new job once idle.
)

type dbworker interface {
	FailJob(ctx context.Context, jobID int64, cause string) error
	FinishJob(ctx context.Context, jobID int64, apiCallsUsed int32) error
	InsertJobEvent(ctx context.Context, jobID int64, event string) error
	NextJob(ctx context.Context) (*models.Job, error)
	RequeueJob(ctx context.Context, jobID int64) error
	SaveRateLimitBucket(ctx context.Context, b models.RateLimitBucket) error
	StoreMediaSnapshots(ctx context.Context, media []models.MediaSnapshot) error
	StoreResults(ctx context.Context, results []models.AnalysisResult) error
	UpsertBrandProfile(ctx context.Context, p models.BrandProfile) error
	UpsertHashtagAggregates(ctx context.Context, handle string, counts map[string]int32) error
	UpsertInfluencerProfile(ctx context.Context, p models.InfluencerProfile) error
}

const rateLimitBucketKey = "discovery:hourly"

// JobExecutor is the service that dequeues and runs analysis jobs.
type JobExecutor struct {
	db      dbworker
	orch    *orchestrator.Orchestrator
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewJobExecutor sets up and returns a new JobExecutor service. limiter may
// be nil, in which case the rate limit bucket is never persisted.
func NewJobExecutor(db dbworker, orch *orchestrator.Orchestrator, limiter *ratelimit.Limiter, logger *slog.Logger) *JobExecutor {
	if logger == nil {
		logger = slog.Default()
	}

	return &JobExecutor{
		db:      db,
		orch:    orch,
		limiter: limiter,
		logger:  logger,
	}
}

// Start polls for and runs jobs until ctx is cancelled.
func (w *JobExecutor) Start(ctx context.Context) {
	delay := time.Millisecond

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutting down worker...")

			return
		case <-time.After(delay):
			delay = pollInterval

			w.persistRateLimitBucket(ctx)

			job, err := w.db.NextJob(ctx)

			switch {
			case err != nil:
				w.logger.Error("could not fetch job", "error", err)
			case job == nil:
				continue
			default:
				w.logger.Info("starting job", "job.id", job.ID, "job.attempts", job.Attempts)
				w.dispatch(ctx, job)
			}
		}
	}
}

// persistRateLimitBucket mirrors the limiter's current token count into
// Postgres so a restart doesn't silently refill the hourly ceiling.
func (w *JobExecutor) persistRateLimitBucket(ctx context.Context) {
	if w.limiter == nil {
		return
	}

	tokens, lastRefill, err := w.limiter.Snapshot(ctx)
	if err != nil {
		w.logger.Warn("could not snapshot rate limiter", "error", err)

		return
	}

	bucket := models.RateLimitBucket{
		BucketKey:  rateLimitBucketKey,
		Tokens:     tokens,
		LastRefill: lastRefill,
	}

	if err := w.db.SaveRateLimitBucket(ctx, bucket); err != nil {
		w.logger.Warn("could not persist rate limit bucket", "error", err)
	}
}

// dispatch runs a single claimed job, applying the dispatch-level retry
// policy: a job may be re-queued up to maxDispatchAttempts times, each
// separated by dispatchCooldown, before being marked permanently failed.
func (w *JobExecutor) dispatch(ctx context.Context, job *models.Job) {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	err := w.RunJob(jobCtx, job)
	if err == nil {
		return
	}

	w.logger.Error("job failed", "job.id", job.ID, "error", err)

	if logErr := w.db.InsertJobEvent(ctx, job.ID, err.Error()); logErr != nil {
		w.logger.Error("could not log job event", "error", logErr)
	}

	if job.Attempts <= maxDispatchAttempts {
		time.Sleep(dispatchCooldown)

		if err := w.db.RequeueJob(ctx, job.ID); err != nil {
			w.logger.Error("could not requeue job", "job.id", job.ID, "error", err)
		}

		return
	}

	if err := w.db.FailJob(ctx, job.ID, err.Error()); err != nil {
		w.logger.Error("could not mark job failed", "job.id", job.ID, "error", err)
	}
}

// RunJob analyzes the brand and every influencer handle in the job's
// parameters. A failure analyzing one influencer does not abort the others
// (continue-on-error); only a failure analyzing the brand itself is fatal.
func (w *JobExecutor) RunJob(ctx context.Context, job *models.Job) error {
	parsed, err := models.NewDecodedJob(job)
	if err != nil {
		return errors.Join(ErrDBFailure, err)
	}

	brand, err := w.orch.AnalyzeBrand(ctx, parsed.Parameters.BrandHandle)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err := w.db.UpsertBrandProfile(ctx, brandProfileOf(parsed.Parameters.BrandHandle, brand)); err != nil {
		w.logger.Error("could not store brand profile", "error", err)
	}

	if err := w.db.UpsertHashtagAggregates(ctx, parsed.Parameters.BrandHandle, hashtagCountsOf(brand)); err != nil {
		w.logger.Error("could not store brand hashtag aggregates", "error", err)
	}

	if err := w.db.StoreMediaSnapshots(ctx, mediaSnapshotsOf(parsed.Parameters.BrandHandle, brand)); err != nil {
		w.logger.Error("could not store brand media snapshots", "error", err)
	}

	results := make([]models.AnalysisResult, 0, len(parsed.Parameters.InfluencerHandles))
	apiCalls := int32(1) // the brand fetch

	for _, handle := range parsed.Parameters.InfluencerHandles {
		apiCalls++

		influencer, err := w.orch.AnalyzeInfluencer(ctx, handle)
		if err != nil {
			w.logger.Error("could not analyze influencer", "handle", handle, "error", err)

			if logErr := w.db.InsertJobEvent(ctx, job.ID, "failed to analyze "+handle+": "+err.Error()); logErr != nil {
				w.logger.Error("could not log job event", "error", logErr)
			}

			continue
		}

		if err := w.db.UpsertInfluencerProfile(ctx, influencerProfileOf(handle, influencer)); err != nil {
			w.logger.Error("could not store influencer profile", "error", err)
		}

		if err := w.db.UpsertHashtagAggregates(ctx, handle, hashtagCountsOf(influencer)); err != nil {
			w.logger.Error("could not store influencer hashtag aggregates", "error", err)
		}

		if err := w.db.StoreMediaSnapshots(ctx, mediaSnapshotsOf(handle, influencer)); err != nil {
			w.logger.Error("could not store influencer media snapshots", "error", err)
		}

		breakdown := w.orch.Breakdown(brand, influencer)
		sim := w.orch.Score(brand, influencer)

		results = append(results, models.AnalysisResult{ //nolint:exhaustruct
			JobID:            job.ID,
			BrandHandle:      parsed.Parameters.BrandHandle,
			InfluencerHandle: handle,
			SimilarityScore:  breakdown.SimilarityScore,
			EngagementScore:  breakdown.EngagementScore,
			CategoryScore:    breakdown.CategoryScore,
			FinalScore:       breakdown.FinalScore,
			Grade:            breakdown.Grade,
			CommonHashtags:   sim.CommonHashtags,
			TopPosts:         topPostsOf(influencer),
			CollabSignals:    collabSignalsOf(influencer),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if err := w.db.StoreResults(ctx, results); err != nil {
		return errors.Join(ErrDBFailure, err)
	}

	if err := w.db.FinishJob(ctx, job.ID, apiCalls); err != nil {
		return errors.Join(ErrDBFailure, err)
	}

	return nil
}

func brandProfileOf(handle string, f orchestrator.Features) models.BrandProfile {
	return models.BrandProfile{
		Handle:            handle,
		Name:              deref(f.Profile.Name),
		FollowersCount:    f.Profile.FollowersCount,
		Biography:         deref(f.Profile.Biography),
		ProfilePictureURL: deref(f.Profile.ProfilePictureURL),
		Categories:        f.Categories,
		Hashtags:          f.Hashtags,
		Keywords:          f.Keywords,
		FetchedAt:         time.Now(),
	}
}

func influencerProfileOf(handle string, f orchestrator.Features) models.InfluencerProfile {
	return models.InfluencerProfile{
		Handle:            handle,
		Name:              deref(f.Profile.Name),
		FollowersCount:    f.Profile.FollowersCount,
		Biography:         deref(f.Profile.Biography),
		ProfilePictureURL: deref(f.Profile.ProfilePictureURL),
		Categories:        f.Categories,
		Hashtags:          f.Hashtags,
		Keywords:          f.Keywords,
		Tier:              string(f.Tier),
		FetchedAt:         time.Now(),
	}
}

func hashtagCountsOf(f orchestrator.Features) map[string]int32 {
	counts := make(map[string]int32, len(f.HashtagCounts))
	for _, c := range f.HashtagCounts {
		counts[c.Tag] = int32(c.Count)
	}

	return counts
}

func mediaSnapshotsOf(handle string, f orchestrator.Features) []models.MediaSnapshot {
	media := f.Profile.Media
	snapshots := make([]models.MediaSnapshot, 0, len(media))

	for _, m := range media {
		snapshots = append(snapshots, models.MediaSnapshot{ //nolint:exhaustruct
			Handle:        handle,
			MediaID:       m.ID,
			Caption:       m.Caption,
			LikeCount:     m.LikeCount,
			CommentsCount: m.CommentsCount,
			MediaType:     m.MediaType,
			PostedAt:      m.PostedAt,
		})
	}

	return snapshots
}

func topPostsOf(f orchestrator.Features) []models.TopPost {
	posts := make([]models.TopPost, 0, len(f.TopPosts))
	for _, p := range f.TopPosts {
		posts = append(posts, models.TopPost{
			ID:             p.ID,
			Caption:        p.Caption,
			Permalink:      p.Permalink,
			PostedAt:       p.PostedAt,
			EngagementRate: p.EngagementRate,
		})
	}

	return posts
}

func collabSignalsOf(f orchestrator.Features) []models.CollabSignal {
	signals := make([]models.CollabSignal, 0, len(f.CollabSignals))
	for _, s := range f.CollabSignals {
		signals = append(signals, models.CollabSignal{
			PostID:            s.PostID,
			CollaborationType: s.CollaborationType,
			CollabHashtags:    s.CollabHashtags,
			Mentions:          s.Mentions,
		})
	}

	return signals
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
