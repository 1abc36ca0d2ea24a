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

// Package service provides several services for communicating between different layers of the application.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"

	"github.com/jdh4601/fashion-influencer-matcher/database"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
)

const MaxInfluencersPerJob = 50 // The maximum number of influencer handles a single job may compare against a brand.

var (
	ErrDBFailure          = errors.New("db error") // Generic error wrapper for db failures.
	ErrTooManyInfluencers = errors.New("too many influencer handles requested")
)

type jobsDB interface {
	FindJob(ctx context.Context, params database.FindJobParams) (*models.Job, error)
	FindJobs(ctx context.Context, params database.FindJobsParams) ([]models.Job, error)
	FindResults(ctx context.Context, jobID int64) ([]models.AnalysisResult, error)
	NewJob(ctx context.Context, params database.NewJobParams) (*models.Job, error)
}

// Jobs is the service that abstracts job operations from the database layer.
type Jobs struct {
	db jobsDB
}

// NewJobsService sets up and returns a new Jobs service.
func NewJobsService(db jobsDB) *Jobs {
	return &Jobs{
		db: db,
	}
}

// FindJob finds a job by its ID or checksum.
// This method does not error if the job isn't found, it returns a nil pointer.
func (j *Jobs) FindJob(ctx context.Context, params database.FindJobParams) (*models.Job, error) {
	jj, err := j.db.FindJob(ctx, params)
	if err != nil {
		return nil, errors.Join(ErrDBFailure, err)
	}

	return jj, nil
}

// FindJobs lists jobs, most recent first by default.
func (j *Jobs) FindJobs(ctx context.Context, params database.FindJobsParams) ([]models.Job, error) {
	jobs, err := j.db.FindJobs(ctx, params)
	if err != nil {
		return nil, errors.Join(ErrDBFailure, err)
	}

	return jobs, nil
}

// FindResults returns a job's analysis results, best match first.
func (j *Jobs) FindResults(ctx context.Context, jobID int64) ([]models.AnalysisResult, error) {
	results, err := j.db.FindResults(ctx, jobID)
	if err != nil {
		return nil, errors.Join(ErrDBFailure, err)
	}

	return results, nil
}

// NewJob validates and persists a new brand/influencer matching job under a
// content-derived checksum. The checksum column is unique, so resubmitting the
// same request fails with ErrDBFailure; the original job is not returned.
func (j *Jobs) NewJob(ctx context.Context, params models.JobParameters) (*models.Job, error) {
	if len(params.InfluencerHandles) > MaxInfluencersPerJob {
		return nil, ErrTooManyInfluencers
	}

	job, err := j.db.NewJob(ctx, database.NewJobParams{
		Checksum:   checksumOf(params),
		Parameters: params,
	})
	if err != nil {
		return nil, errors.Join(ErrDBFailure, err)
	}

	return job, nil
}

// checksumOf derives a stable content hash for a job's parameters, so the
// same brand/influencer set (in any handle order) yields the same checksum.
func checksumOf(params models.JobParameters) string {
	handles := append([]string(nil), params.InfluencerHandles...)
	sort.Strings(handles)

	raw, _ := json.Marshal(struct { //nolint:errchkjson
		BrandHandle       string   `json:"brandHandle"`
		InfluencerHandles []string `json:"influencerHandles"`
		MinGrade          string   `json:"minGrade"`
	}{
		BrandHandle:       params.BrandHandle,
		InfluencerHandles: handles,
		MinGrade:          params.MinGrade,
	})

	sum := sha256.Sum256(raw)

	return hex.EncodeToString(sum[:])
}
