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

package webserver_test

import (
	"context"

	"github.com/jdh4601/fashion-influencer-matcher/database"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
	"github.com/jdh4601/fashion-influencer-matcher/discovery"
	"github.com/jdh4601/fashion-influencer-matcher/service"
)

// jobsvc implements webserver.jobservice.
type jobsvc struct{}

func (j *jobsvc) FindJob(context.Context, database.FindJobParams) (*models.Job, error) {
	return &models.Job{ //nolint:exhaustruct
		ID:       456,
		Checksum: "test:abcdef",
		Status:   models.JobStatusDone,
	}, nil
}

func (j *jobsvc) FindJobs(context.Context, database.FindJobsParams) ([]models.Job, error) {
	return []models.Job{
		{ID: 123, Checksum: "test:123456", Status: models.JobStatusQueued}, //nolint:exhaustruct
		{ID: 456, Checksum: "test:abcdef", Status: models.JobStatusDone},   //nolint:exhaustruct
	}, nil
}

func (j *jobsvc) FindResults(context.Context, int64) ([]models.AnalysisResult, error) {
	return []models.AnalysisResult{
		{ID: 1, JobID: 456, BrandHandle: "acme", InfluencerHandle: "jane", FinalScore: 91.2, Grade: models.GradeA}, //nolint:exhaustruct
	}, nil
}

func (j *jobsvc) NewJob(context.Context, models.JobParameters) (*models.Job, error) {
	return &models.Job{ID: 789, Checksum: "test:new", Status: models.JobStatusQueued}, nil //nolint:exhaustruct
}

// igservice implements webserver.accountservice.
type igservice struct{}

func (c *igservice) Validate(context.Context, service.ValidateInput) (*discovery.ValidationResult, error) {
	return &discovery.ValidationResult{Valid: true, Exists: true, IsBusiness: true}, nil //nolint:exhaustruct
}
