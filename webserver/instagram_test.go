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
	"net/http"
	"testing"

	"github.com/jdh4601/fashion-influencer-matcher/discovery"
	"github.com/jdh4601/fashion-influencer-matcher/service"
	"github.com/jdh4601/fashion-influencer-matcher/webserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAccountsService struct {
	mock.Mock
}

func (m *mockAccountsService) Validate(ctx context.Context, in service.ValidateInput) (*discovery.ValidationResult, error) {
	args := m.Called(ctx, in)

	result, _ := args.Get(0).(*discovery.ValidationResult)

	return result, args.Error(1)
}

func httpRequest(t *testing.T, pathValues map[string]string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.TODO(), http.MethodGet, "https://example.com/any/", nil)
	if err != nil {
		t.Fatal(err)
	}

	for name, value := range pathValues {
		req.SetPathValue(name, value)
	}

	return req
}

func TestAccountsHandler_Validate(t *testing.T) {
	t.Parallel()

	want := &discovery.ValidationResult{Valid: true, Exists: true, IsBusiness: true} //nolint:exhaustruct

	svc := &mockAccountsService{}
	svc.On("Validate", mock.Anything, service.ValidateInput{Handle: "acme"}).Return(want, nil)

	handler := webserver.WrapAccountsService(svc)

	out, err := handler.Validate(httpRequest(t, map[string]string{"handle": "acme"}))

	assert.NoError(t, err)
	assert.Equal(t, want, out)
	svc.AssertExpectations(t)
}
