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

package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jdh4601/fashion-influencer-matcher/analysis/orchestrator"
	"github.com/jdh4601/fashion-influencer-matcher/cache"
	"github.com/jdh4601/fashion-influencer-matcher/database/models"
	"github.com/jdh4601/fashion-influencer-matcher/discovery"
	"github.com/jdh4601/fashion-influencer-matcher/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDBWorker struct {
	mock.Mock
}

func (m *mockDBWorker) FailJob(ctx context.Context, jobID int64, cause string) error {
	args := m.Called(ctx, jobID, cause)

	return args.Error(0)
}

func (m *mockDBWorker) FinishJob(ctx context.Context, jobID int64, apiCallsUsed int32) error {
	args := m.Called(ctx, jobID, apiCallsUsed)

	return args.Error(0)
}

func (m *mockDBWorker) InsertJobEvent(ctx context.Context, jobID int64, event string) error {
	args := m.Called(ctx, jobID, event)

	return args.Error(0)
}

func (m *mockDBWorker) NextJob(ctx context.Context) (*models.Job, error) {
	args := m.Called(ctx)

	job, _ := args.Get(0).(*models.Job)

	return job, args.Error(1)
}

func (m *mockDBWorker) RequeueJob(ctx context.Context, jobID int64) error {
	args := m.Called(ctx, jobID)

	return args.Error(0)
}

func (m *mockDBWorker) SaveRateLimitBucket(ctx context.Context, b models.RateLimitBucket) error {
	args := m.Called(ctx, b)

	return args.Error(0)
}

func (m *mockDBWorker) StoreMediaSnapshots(ctx context.Context, media []models.MediaSnapshot) error {
	args := m.Called(ctx, media)

	return args.Error(0)
}

func (m *mockDBWorker) StoreResults(ctx context.Context, results []models.AnalysisResult) error {
	args := m.Called(ctx, results)

	return args.Error(0)
}

func (m *mockDBWorker) UpsertBrandProfile(ctx context.Context, p models.BrandProfile) error {
	args := m.Called(ctx, p)

	return args.Error(0)
}

func (m *mockDBWorker) UpsertHashtagAggregates(ctx context.Context, handle string, counts map[string]int32) error {
	args := m.Called(ctx, handle, counts)

	return args.Error(0)
}

func (m *mockDBWorker) UpsertInfluencerProfile(ctx context.Context, p models.InfluencerProfile) error {
	args := m.Called(ctx, p)

	return args.Error(0)
}

type fakeIGClient struct {
	profiles map[string]*discovery.Profile
	err      error
}

func (f *fakeIGClient) GetProfile(_ context.Context, handle string, _ int) (*discovery.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}

	p, ok := f.profiles[handle]
	if !ok {
		return nil, discovery.ErrAccountNotFound
	}

	return p, nil
}

func (f *fakeIGClient) ValidateAccount(_ context.Context, _ string) *discovery.ValidationResult {
	return &discovery.ValidationResult{Valid: true, Exists: true} //nolint:exhaustruct
}

func jobWith(t *testing.T, brandHandle string, influencers []string) *models.Job {
	t.Helper()

	raw, err := json.Marshal(models.JobParameters{
		BrandHandle:       brandHandle,
		InfluencerHandles: influencers,
		MinGrade:          "",
	})
	assert.NoError(t, err)

	return &models.Job{ //nolint:exhaustruct
		ID:      1,
		BinData: raw,
		Status:  models.JobStatusRunning,
	}
}

func likes(n int64) *int64 { return &n }

func TestRunJob_ContinuesPastInfluencerFailure(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	job := jobWith(t, "acme", []string{"good", "missing"})

	ig := &fakeIGClient{
		profiles: map[string]*discovery.Profile{
			"acme": {
				Username:       "acme",
				FollowersCount: 100000,
				Media: []discovery.Media{
					{Caption: "#minimal look", LikeCount: likes(500), CommentsCount: 5},
				},
			},
			"good": {
				Username:       "good",
				FollowersCount: 20000,
				Media: []discovery.Media{
					{Caption: "#minimal outfit", LikeCount: likes(800), CommentsCount: 12},
				},
			},
		},
	}

	orch := orchestrator.New(ig, cache.New(nil, nil), nil, nil)

	db := &mockDBWorker{}
	db.On("UpsertBrandProfile", ctx, mock.Anything).Return(nil)
	db.On("UpsertInfluencerProfile", ctx, mock.Anything).Return(nil)
	db.On("UpsertHashtagAggregates", ctx, mock.Anything, mock.Anything).Return(nil)
	db.On("StoreMediaSnapshots", ctx, mock.Anything).Return(nil)
	db.On("InsertJobEvent", ctx, int64(1), mock.Anything).Return(nil)
	db.On("StoreResults", ctx, mock.MatchedBy(func(r []models.AnalysisResult) bool {
		return len(r) == 1 && r[0].InfluencerHandle == "good"
	})).Return(nil)
	db.On("FinishJob", ctx, int64(1), mock.Anything).Return(nil)

	executor := service.NewJobExecutor(db, orch, nil, nil)

	err := executor.RunJob(ctx, job)

	assert.NoError(t, err)
	db.AssertExpectations(t)
}

func TestRunJob_PopulatesTopPostsAndCollabSignals(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	job := jobWith(t, "acme", []string{"good"})

	ig := &fakeIGClient{
		profiles: map[string]*discovery.Profile{
			"acme": {
				Username:       "acme",
				FollowersCount: 100000,
				Media: []discovery.Media{
					{Caption: "#minimal look", LikeCount: likes(500), CommentsCount: 5},
				},
			},
			"good": {
				Username:       "good",
				FollowersCount: 20000,
				Media: []discovery.Media{
					{ID: "1", Caption: "#ad thanks @brand for the gift", LikeCount: likes(3000), CommentsCount: 40, Permalink: "https://instagram.com/p/1"},
					{ID: "2", Caption: "just a regular day", LikeCount: likes(100), CommentsCount: 2, Permalink: "https://instagram.com/p/2"},
				},
			},
		},
	}

	orch := orchestrator.New(ig, cache.New(nil, nil), nil, nil)

	db := &mockDBWorker{}
	db.On("UpsertBrandProfile", ctx, mock.Anything).Return(nil)
	db.On("UpsertInfluencerProfile", ctx, mock.Anything).Return(nil)
	db.On("UpsertHashtagAggregates", ctx, mock.Anything, mock.Anything).Return(nil)
	db.On("StoreMediaSnapshots", ctx, mock.Anything).Return(nil)
	db.On("StoreResults", ctx, mock.MatchedBy(func(r []models.AnalysisResult) bool {
		if len(r) != 1 {
			return false
		}

		res := r[0]

		return len(res.TopPosts) == 2 &&
			res.TopPosts[0].ID == "1" &&
			len(res.CollabSignals) == 1 &&
			res.CollabSignals[0].PostID == "1"
	})).Return(nil)
	db.On("FinishJob", ctx, int64(1), mock.Anything).Return(nil)

	executor := service.NewJobExecutor(db, orch, nil, nil)

	err := executor.RunJob(ctx, job)

	assert.NoError(t, err)
	db.AssertExpectations(t)
}

func TestRunJob_BrandFailureIsFatal(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	job := jobWith(t, "acme", []string{"good"})

	ig := &fakeIGClient{err: discovery.ErrPrivateAccount} //nolint:exhaustruct
	orch := orchestrator.New(ig, cache.New(nil, nil), nil, nil)

	db := &mockDBWorker{}
	executor := service.NewJobExecutor(db, orch, nil, nil)

	err := executor.RunJob(ctx, job)

	assert.Error(t, err)
	db.AssertExpectations(t)
}

func TestRunJob_InvalidParametersFailFast(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	job := &models.Job{ID: 1, BinData: []byte(`not json`)} //nolint:exhaustruct

	db := &mockDBWorker{}
	executor := service.NewJobExecutor(db, orchestrator.New(&fakeIGClient{}, cache.New(nil, nil), nil, nil), nil, nil) //nolint:exhaustruct

	err := executor.RunJob(ctx, job)

	assert.ErrorIs(t, err, service.ErrDBFailure)
	db.AssertExpectations(t)
}
