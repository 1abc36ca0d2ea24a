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

package webserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jdh4601/fashion-influencer-matcher/database"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
)

// jobservice describes a service that can create and look up analysis jobs.
type jobservice interface {
	FindJob(context.Context, database.FindJobParams) (*models.Job, error)
	FindJobs(context.Context, database.FindJobsParams) ([]models.Job, error)
	FindResults(context.Context, int64) ([]models.AnalysisResult, error)
	NewJob(context.Context, models.JobParameters) (*models.Job, error)
}

// JobsHandler wraps a jobservice to call its methods passing arguments read
// from an HTTP request.
type JobsHandler struct {
	svc jobservice
}

// WrapJobsService wraps a jobservice.
func WrapJobsService(svc jobservice) *JobsHandler {
	return &JobsHandler{
		svc: svc,
	}
}

// CreateJob handles POST /jobs: decodes a models.JobParameters body and
// enqueues a new analysis job.
func (j *JobsHandler) CreateJob(ctx context.Context, in models.JobParameters) (*models.Job, error) {
	return j.svc.NewJob(ctx, in) //nolint:wrapcheck
}

// GetJob handles GET /jobs/{id}.
func (j *JobsHandler) GetJob(r *http.Request) (*models.Job, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, database.ErrFindJobParams
	}

	return j.svc.FindJob(r.Context(), database.FindJobParams{ID: id}) //nolint:wrapcheck,exhaustruct
}

// ListJobsInput defines the query parameters for GET /jobs.
type ListJobsInput struct {
	Order  string `in:"order,omitempty"`
	Page   int32  `in:"page,omitempty"`
	Status string `in:"status,omitempty"`
}

// ListJobs handles GET /jobs.
func (j *JobsHandler) ListJobs(ctx context.Context, in ListJobsInput) ([]models.Job, error) {
	return j.svc.FindJobs(ctx, database.FindJobsParams{ //nolint:wrapcheck
		Order:  in.Order,
		Page:   in.Page,
		Status: in.Status,
	})
}

// GetResults handles GET /jobs/{id}/results.
func (j *JobsHandler) GetResults(r *http.Request) ([]models.AnalysisResult, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, database.ErrFindJobParams
	}

	return j.svc.FindResults(r.Context(), id) //nolint:wrapcheck
}
