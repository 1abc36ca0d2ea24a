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
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jdh4601/fashion-influencer-matcher/webserver"
	"github.com/stretchr/testify/assert"
)

type args struct {
	body     string
	endpoint string
	method   string
}

func TestEndpointsResponses(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.TODO())

	server, err := webserver.Create(ctx, &jobsvc{}, &igservice{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, err)

	testServer := httptest.NewServer(server.Handler)

	t.Cleanup(testServer.Close)
	t.Cleanup(cancel)

	tests := map[string]struct {
		args
		wantStatus int
	}{
		"GET /jobs/{id}": {
			args:       args{endpoint: "/jobs/456"},
			wantStatus: http.StatusOK,
		},
		"GET /jobs/{id} (bad id)": {
			args:       args{endpoint: "/jobs/not-a-number"},
			wantStatus: http.StatusBadRequest,
		},
		"GET /jobs/{id}/results": {
			args:       args{endpoint: "/jobs/456/results"},
			wantStatus: http.StatusOK,
		},
		"GET /jobs": {
			args:       args{endpoint: "/jobs"},
			wantStatus: http.StatusOK,
		},
		"GET /accounts/{handle}/validate": {
			args:       args{endpoint: "/accounts/acme/validate"},
			wantStatus: http.StatusOK,
		},
		"POST /jobs": {
			args: args{
				endpoint: "/jobs",
				method:   http.MethodPost,
				body:     `{"brandHandle":"acme","influencerHandles":["jane"]}`,
			},
			wantStatus: http.StatusOK,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var (
				res *http.Response
				err error
			)

			//nolint:noctx // Ok when testing
			switch test.args.method {
			case http.MethodPost:
				//nolint:bodyclose // False positive.
				res, err = http.Post(testServer.URL+test.args.endpoint, "application/json", bytes.NewReader([]byte(test.args.body)))
			default:
				//nolint:bodyclose // False positive.
				res, err = http.Get(testServer.URL + test.args.endpoint)
			}

			assert.NoError(t, err)
			defer res.Body.Close()

			_, err = io.ReadAll(res.Body)
			assert.NoError(t, err)

			assert.Equal(t, test.wantStatus, res.StatusCode)
		})
	}
}
