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
	"testing"

	"github.com/jdh4601/fashion-influencer-matcher/discovery"
	"github.com/jdh4601/fashion-influencer-matcher/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockInstagramClient struct {
	mock.Mock
}

func (m *mockInstagramClient) ValidateAccount(ctx context.Context, handle string) *discovery.ValidationResult {
	args := m.Called(ctx, handle)

	result, _ := args.Get(0).(*discovery.ValidationResult)

	return result
}

func TestValidate(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()

	t.Run("blank handle", func(t *testing.T) {
		t.Parallel()

		client := &mockInstagramClient{}
		svc := service.NewAccountsService(client)

		out, err := svc.Validate(ctx, service.ValidateInput{Handle: ""})

		assert.Nil(t, out)
		assert.ErrorIs(t, err, service.ErrInvalidHandle)
	})

	t.Run("delegates to client", func(t *testing.T) {
		t.Parallel()

		want := &discovery.ValidationResult{Valid: true, Exists: true, IsBusiness: true} //nolint:exhaustruct

		client := &mockInstagramClient{}
		client.On("ValidateAccount", ctx, "acme").Return(want)

		svc := service.NewAccountsService(client)

		out, err := svc.Validate(ctx, service.ValidateInput{Handle: "acme"})

		assert.NoError(t, err)
		assert.Equal(t, want, out)
		client.AssertExpectations(t)
	})
}
