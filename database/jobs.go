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
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
)

const MaxJobsResult = 20 // The maximum number of jobs per page that are retrieved by FindJobs().

var (
	ErrDriverFailure   = errors.New("db error")              // Something went wrong when querying the database.
	ErrFindJobParams   = errors.New("requires id or checksum") // Missing required parameters in FindJob().
	ErrInvalidChecksum = errors.New("invalid checksum")        // Invalid checksum.
	ErrInvalidStatus   = errors.New("invalid job status")      // Invalid status.
)

// FindJobParams defines the search parameters for FindJob().
type FindJobParams struct {
	Checksum string `in:"checksum"`
	ID       int64  `in:"id"`
	Status   string `in:"status"`
}

// FindJobsParams defines the search parameters for FindJobs().
type FindJobsParams struct {
	Order  string `in:"order"`
	Page   int32  `in:"page"`
	Status string `in:"status"`
}

// NewJobParams defines the input data for NewJob().
type NewJobParams struct {
	Checksum   string
	Parameters models.JobParameters
}

// FindJob finds a job by its ID or checksum.
func (d *Database) FindJob(ctx context.Context, params FindJobParams) (*models.Job, error) {
	if params.ID <= 0 && params.Checksum == "" {
		return nil, ErrFindJobParams
	}

	whereP := make([]string, 0)
	whereV := make([]any, 0)

	if params.ID > 0 {
		whereP = append(whereP, nextPlaceholder("id", whereP))
		whereV = append(whereV, params.ID)
	}

	if params.Checksum != "" {
		whereP = append(whereP, nextPlaceholder("checksum", whereP))
		whereV = append(whereV, params.Checksum)
	}

	if params.Status != "" {
		whereP = append(whereP, nextPlaceholder("status", whereP))
		whereV = append(whereV, params.Status)
	}

	sql := `
	SELECT
		id,
		checksum,
		status,
		parameters,
		created_at,
		started_at,
		finished_at,
		error,
		attempts,
		api_calls_used
	FROM
		jobs
	WHERE ` + strings.Join(whereP, " AND ")

	job, err := d.querier.SelectJob(ctx, d, sql, whereV...)

	switch {
	case err == nil:
		return job, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil //nolint:nilnil // It means not found
	default:
		return nil, err //nolint:wrapcheck // Error from the same package
	}
}

// FindJobs returns a list of jobs.
func (d *Database) FindJobs(ctx context.Context, params FindJobsParams) ([]models.Job, error) {
	whereP := make([]string, 0)
	args := make([]any, 0)
	where := ""
	order, dir := "created_at", OrderDesc

	if params.Status != "" {
		whereP = append(whereP, nextPlaceholder("status", whereP))
		args = append(args, params.Status)
	}

	if len(whereP) > 0 {
		where = "WHERE " + strings.Join(whereP, " AND ")
	}

	switch params.Order {
	case "created_at":
		order, dir = "created_at", OrderAsc
	case "-status":
		order, dir = "status", OrderDesc
	case "status":
		order, dir = "status", OrderAsc
	}

	sql := `
	SELECT
		id,
		checksum,
		status,
		parameters,
		created_at,
		started_at,
		finished_at,
		error,
		attempts,
		api_calls_used
	FROM
		jobs
	`

	sql += " " + where + " ORDER BY " + order + " " + dir +
		" LIMIT " + strconv.Itoa(MaxJobsResult) + " OFFSET " + strconv.Itoa(int(params.Page)*MaxJobsResult)

	jobs, err := d.querier.SelectJobs(ctx, d, sql, args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // Error from the same package
	}

	return jobs, nil
}

// NewJob creates a new Job in the `jobs` table, queued for execution.
func (d *Database) NewJob(ctx context.Context, params NewJobParams) (*models.Job, error) {
	if params.Checksum == "" {
		return nil, ErrInvalidChecksum
	}

	if params.Parameters.BrandHandle == "" {
		return nil, models.ErrInvalidHandle
	}

	parameters, err := json.Marshal(params.Parameters)
	if err != nil {
		return nil, errors.Join(models.ErrInvalidMetadata, err)
	}

	sql := `
	INSERT INTO jobs (
		checksum,
		status,
		parameters,
		created_at,
		attempts,
		api_calls_used
	)
	VALUES ($1, $2, $3, NOW(), 0, 0)
	RETURNING *
	`

	j, err := SelectOne[models.Job](ctx, d, sql, params.Checksum, models.JobStatusQueued, parameters)
	if err != nil {
		return nil, errors.Join(ErrDriverFailure, err)
	}

	return j, nil
}

// nextPlaceholder builds prepared statements' placeholders.
func nextPlaceholder(col string, where []string) string {
	return col + " = $" + strconv.Itoa(len(where)+1)
}
