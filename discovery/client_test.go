package discovery

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockHTTPDoer struct {
	status int
	body   string
	err    error
	header http.Header
}

func (m *mockHTTPDoer) Do(*http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}

	h := m.header
	if h == nil {
		h = http.Header{}
	}

	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
		Header:     h,
	}, nil
}

func TestGetProfile(t *testing.T) {
	tests := map[string]struct {
		doer    *mockHTTPDoer
		wantErr error
	}{
		"success": {
			doer: &mockHTTPDoer{
				status: http.StatusOK,
				body:   `{"id":"1","business_discovery":{"username":"Brandx","followers_count":100,"follows_count":10,"media_count":2,"media":{"data":[{"id":"m1","caption":"hi","like_count":5,"comments_count":1,"media_type":"IMAGE","permalink":"https://x","timestamp":"2024-01-01T00:00:00Z"}]}}}`,
			},
		},
		"account not found": {
			doer: &mockHTTPDoer{
				status: http.StatusBadRequest,
				body:   `{"error":{"code":80004,"message":"not found"}}`,
			},
			wantErr: ErrAccountNotFound,
		},
		"private account": {
			doer: &mockHTTPDoer{
				status: http.StatusBadRequest,
				body:   `{"error":{"code":80001,"message":"private"}}`,
			},
			wantErr: ErrPrivateAccount,
		},
		"rate limited": {
			doer: &mockHTTPDoer{
				status: http.StatusTooManyRequests,
				body:   `{"error":{"code":4,"message":"rate limited"}}`,
				header: http.Header{"Retry-After": []string{"120"}},
			},
			wantErr: ErrRateLimited,
		},
		"other api error": {
			doer: &mockHTTPDoer{
				status: http.StatusInternalServerError,
				body:   `{"error":{"code":1,"message":"oops"}}`,
			},
			wantErr: ErrAPI,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := NewClient(tt.doer, nil, "123", "token")

			profile, err := c.GetProfile(context.Background(), "brandx", 20)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, profile)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "brandx", profile.Username)
			assert.Len(t, profile.Media, 1)
			assert.Equal(t, int64(5), *profile.Media[0].LikeCount)
		})
	}
}

func TestValidateAccount(t *testing.T) {
	tests := map[string]struct {
		doer *mockHTTPDoer
		want ValidationResult
	}{
		"exists": {
			doer: &mockHTTPDoer{status: http.StatusOK, body: `{"id":"1","business_discovery":{"username":"a"}}`},
			want: ValidationResult{Valid: true, Exists: true, IsBusiness: true},
		},
		"not found": {
			doer: &mockHTTPDoer{status: http.StatusBadRequest, body: `{"error":{"code":80004,"message":"x"}}`},
			want: ValidationResult{Valid: false, Exists: false, IsBusiness: false},
		},
		"private": {
			doer: &mockHTTPDoer{status: http.StatusBadRequest, body: `{"error":{"code":80001,"message":"x"}}`},
			want: ValidationResult{Valid: false, Exists: true, IsBusiness: false},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := NewClient(tt.doer, nil, "123", "token")
			got := c.ValidateAccount(context.Background(), "a")

			assert.Equal(t, tt.want.Valid, got.Valid)
			assert.Equal(t, tt.want.Exists, got.Exists)
			assert.Equal(t, tt.want.IsBusiness, got.IsBusiness)
		})
	}
}
