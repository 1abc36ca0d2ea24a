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

// Package models describes the structures stored in the database.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrInvalidHandle   = errors.New("invalid brand handle")
	ErrInvalidMetadata = errors.New("job has invalid metadata")
)

// Job represents a record of the `jobs` table: one matching run for a brand
// against a list of candidate influencer handles.
type Job struct {
	BinData     []byte     `description:"Job parameters as binary stream" json:"parameters" db:"parameters"`
	ID          int64      `description:"Record PK" json:"id" db:"id"`
	Checksum    string     `description:"Job checksum to avoid duplicates" json:"checksum" db:"checksum"`
	Status      string     `description:"Execution state (queued, running, done, failed)" json:"status" db:"status"`
	CreatedAt   time.Time  `description:"Enqueue time" json:"createdAt" db:"created_at"`
	StartedAt   *time.Time `description:"Execution start time" json:"startedAt" db:"started_at"`
	FinishedAt  *time.Time `description:"Execution end time" json:"finishedAt" db:"finished_at"`
	Error       *string    `description:"Last terminal error, if any" json:"error" db:"error"`
	Attempts    int32      `description:"Dispatch attempts so far" json:"attempts" db:"attempts"`
	APICallsUsed int32     `description:"Discovery API calls consumed by this job" json:"apiCallsUsed" db:"api_calls_used"`
}

// JobParameters is a Job's decoded parameter payload.
type JobParameters struct {
	BrandHandle       string   `json:"brandHandle"`
	InfluencerHandles []string `json:"influencerHandles"`
	MinGrade          string   `json:"minGrade,omitempty"`
}

// DecodedJob pairs a Job with its parsed JobParameters.
type DecodedJob struct {
	*Job

	Parameters JobParameters `json:"parameters"`
}

// NewDecodedJob parses a Job's BinData into JobParameters.
func NewDecodedJob(j *Job) (*DecodedJob, error) {
	var p *JobParameters

	d := json.NewDecoder(bytes.NewBuffer(j.BinData))
	d.UseNumber()

	if err := d.Decode(&p); err != nil {
		return nil, errors.Join(ErrInvalidMetadata, err)
	}

	if p.BrandHandle == "" {
		return nil, ErrInvalidHandle
	}

	return &DecodedJob{
		Job:        j,
		Parameters: *p,
	}, nil
}

// BrandProfile mirrors the last known Instagram business-discovery snapshot
// for a fashion brand account.
type BrandProfile struct {
	Handle            string    `description:"Instagram handle, PK" json:"handle" db:"handle"`
	Name              string    `description:"Display name" json:"name" db:"name"`
	FollowersCount    int64     `description:"Follower count at last fetch" json:"followersCount" db:"followers_count"`
	Biography         string    `description:"Profile biography" json:"biography" db:"biography"`
	ProfilePictureURL string    `description:"Profile picture URL" json:"profilePictureUrl" db:"profile_picture_url"`
	Categories        []string  `description:"Classified taxonomy slugs" json:"categories" db:"categories"`
	Hashtags          []string  `description:"Top hashtags extracted from recent captions" json:"hashtags" db:"hashtags"`
	Keywords          []string  `description:"Top keywords extracted from recent captions" json:"keywords" db:"keywords"`
	FetchedAt         time.Time `description:"Last fetch time" json:"fetchedAt" db:"fetched_at"`
}

// InfluencerProfile mirrors the last known Instagram business-discovery
// snapshot for a candidate influencer account.
type InfluencerProfile struct {
	Handle            string    `description:"Instagram handle, PK" json:"handle" db:"handle"`
	Name              string    `description:"Display name" json:"name" db:"name"`
	FollowersCount    int64     `description:"Follower count at last fetch" json:"followersCount" db:"followers_count"`
	Biography         string    `description:"Profile biography" json:"biography" db:"biography"`
	ProfilePictureURL string    `description:"Profile picture URL" json:"profilePictureUrl" db:"profile_picture_url"`
	Categories        []string  `description:"Classified taxonomy slugs" json:"categories" db:"categories"`
	Hashtags          []string  `description:"Top hashtags extracted from recent captions" json:"hashtags" db:"hashtags"`
	Keywords          []string  `description:"Top keywords extracted from recent captions" json:"keywords" db:"keywords"`
	Tier              string    `description:"Follower tier (nano, micro, mid, macro)" json:"tier" db:"tier"`
	FetchedAt         time.Time `description:"Last fetch time" json:"fetchedAt" db:"fetched_at"`
}

// MediaSnapshot is a single fetched media item, kept for engagement analysis
// and auditability.
type MediaSnapshot struct {
	ID            int64     `description:"Record PK" json:"id" db:"id"`
	Handle        string    `description:"Owning account's handle" json:"handle" db:"handle"`
	MediaID       string    `description:"Instagram media ID" json:"mediaId" db:"media_id"`
	Caption       string    `description:"Media caption" json:"caption" db:"caption"`
	LikeCount     *int64    `description:"Like count, absent when hidden by the author" json:"likeCount" db:"like_count"`
	CommentsCount int64     `description:"Comment count" json:"commentsCount" db:"comments_count"`
	MediaType     string    `description:"IMAGE, VIDEO or CAROUSEL_ALBUM" json:"mediaType" db:"media_type"`
	PostedAt      time.Time `description:"Media creation time" json:"postedAt" db:"posted_at"`
	FetchedAt     time.Time `description:"Snapshot fetch time" json:"fetchedAt" db:"fetched_at"`
}

// HashtagAggregate is a per-handle hashtag frequency count, refreshed on
// every profile analysis.
type HashtagAggregate struct {
	ID        int64     `description:"Record PK" json:"id" db:"id"`
	Handle    string     `description:"Owning account's handle" json:"handle" db:"handle"`
	Hashtag   string     `description:"Hashtag, without the leading #" json:"hashtag" db:"hashtag"`
	Count     int32      `description:"Occurrences across the analyzed media window" json:"count" db:"count"`
	UpdatedAt time.Time `description:"Last refresh time" json:"updatedAt" db:"updated_at"`
}

// TopPost summarizes one of an influencer's highest-engagement-rate posts,
// stored as part of an AnalysisResult.
type TopPost struct {
	ID             string    `json:"id"`
	Caption        string    `json:"caption"`
	Permalink      string    `json:"permalink"`
	PostedAt       time.Time `json:"postedAt"`
	EngagementRate float64   `json:"engagementRate"`
}

// CollabSignal is a single sponsorship/collaboration marker detected on one
// of an influencer's captions, stored as part of an AnalysisResult.
type CollabSignal struct {
	PostID            string   `json:"postId"`
	CollaborationType string   `json:"collaborationType"`
	CollabHashtags    []string `json:"collabHashtags"`
	Mentions          []string `json:"mentions"`
}

// AnalysisResult is a scored brand/influencer pairing produced by a Job.
type AnalysisResult struct {
	ID                int64          `description:"Record PK" json:"id" db:"id"`
	JobID             int64          `description:"Owning job" json:"jobId" db:"job_id"`
	BrandHandle       string         `description:"Brand handle" json:"brandHandle" db:"brand_handle"`
	InfluencerHandle  string         `description:"Influencer handle" json:"influencerHandle" db:"influencer_handle"`
	SimilarityScore   float64        `description:"0-100 weighted-Jaccard similarity" json:"similarityScore" db:"similarity_score"`
	EngagementScore   float64        `description:"0-100 engagement quality score" json:"engagementScore" db:"engagement_score"`
	CategoryScore     float64        `description:"0-100 taxonomy overlap score" json:"categoryScore" db:"category_score"`
	FinalScore        float64        `description:"0-100 weighted aggregate" json:"finalScore" db:"final_score"`
	Grade             string         `description:"A, B, C or D" json:"grade" db:"grade"`
	CommonHashtags    []string       `description:"Hashtags shared by both accounts" json:"commonHashtags" db:"common_hashtags"`
	TopPosts          []TopPost      `description:"Influencer's top 3 posts by engagement rate" json:"topPosts" db:"top_posts"`
	CollabSignals     []CollabSignal `description:"Influencer's detected sponsorship/collaboration signals, capped at 10" json:"collabSignals" db:"collab_signals"`
	CreatedAt         time.Time      `description:"Scoring time" json:"createdAt" db:"created_at"`
}

// CategoryTaxonomy mirrors analysis/taxonomy's static category table, kept in
// Postgres so the API can list/search categories without a code deploy.
type CategoryTaxonomy struct {
	Slug   string `description:"Category slug, PK" json:"slug" db:"slug"`
	Name   string `description:"Human readable name" json:"name" db:"name"`
	Weight float64 `description:"Scoring weight" json:"weight" db:"weight"`
}

// RateLimitBucket persists the Instagram discovery API token bucket state so
// it survives process restarts (Warmed back into ratelimit.Limiter on boot).
type RateLimitBucket struct {
	BucketKey  string    `description:"Bucket identifier, PK" json:"bucketKey" db:"bucket_key"`
	Tokens     float64   `description:"Tokens remaining as of LastRefill" json:"tokens" db:"tokens"`
	LastRefill time.Time `description:"Last refill timestamp" json:"lastRefill" db:"last_refill"`
}
