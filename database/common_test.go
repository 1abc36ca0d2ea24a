package database_test

import (
	"context"
	"strings"

	"github.com/jdh4601/fashion-influencer-matcher/database"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
	"github.com/stretchr/testify/mock"
)

type mockQuerier struct {
	mock.Mock
}

func (q *mockQuerier) Count(ctx context.Context, db *database.Database, sql string, args ...any) (int32, error) {
	allArgs := append([]any{ctx, db, oneLineSQL(sql)}, args...)

	funcArgs := q.Called(allArgs...)

	return funcArgs.Get(0).(int32), funcArgs.Error(1)
}

func (q *mockQuerier) Execute(ctx context.Context, db *database.Database, sql string, args ...any) error {
	allArgs := append([]any{ctx, db, oneLineSQL(sql)}, args...)

	funcArgs := q.Called(allArgs...)

	return funcArgs.Error(0)
}

func (q *mockQuerier) SelectJob(ctx context.Context, db *database.Database, sql string, args ...any) (*models.Job, error) {
	allArgs := append([]any{ctx, db, oneLineSQL(sql)}, args...)

	funcArgs := q.Called(allArgs...)

	job, _ := funcArgs.Get(0).(*models.Job)

	return job, funcArgs.Error(1)
}

func (q *mockQuerier) SelectJobs(ctx context.Context, db *database.Database, sql string, args ...any) ([]models.Job, error) {
	allArgs := append([]any{ctx, db, oneLineSQL(sql)}, args...)

	funcArgs := q.Called(allArgs...)

	jobs, _ := funcArgs.Get(0).([]models.Job)

	return jobs, funcArgs.Error(1)
}

func (q *mockQuerier) SelectResults(ctx context.Context, db *database.Database, sql string, args ...any) ([]models.AnalysisResult, error) {
	allArgs := append([]any{ctx, db, oneLineSQL(sql)}, args...)

	funcArgs := q.Called(allArgs...)

	results, _ := funcArgs.Get(0).([]models.AnalysisResult)

	return results, funcArgs.Error(1)
}

func oneLineSQL(sql string) string {
	s := strings.ReplaceAll(sql, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")

	return strings.Join(strings.Fields(s), " ")
}

func strPtr(str string) *string {
	return &str
}
