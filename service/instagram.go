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

package service

import (
	"context"
	"errors"

	"github.com/jdh4601/fashion-influencer-matcher/discovery"
)

// ErrInvalidHandle is returned when a handle path parameter is blank.
var ErrInvalidHandle = errors.New("invalid handle")

// igclient describes the subset of discovery.Client this service needs.
type igclient interface {
	ValidateAccount(ctx context.Context, handle string) *discovery.ValidationResult
}

// Accounts wraps a discovery client to validate handles before they're
// accepted into a job, so a caller can surface a private/nonexistent
// account up front instead of discovering it during the worker run.
type Accounts struct {
	client igclient
}

// ValidateInput defines input parameters for Validate.
type ValidateInput struct {
	Handle string `in:"handle,path,required"`
}

// NewAccountsService sets up and returns a new Accounts service.
func NewAccountsService(client igclient) *Accounts {
	return &Accounts{
		client: client,
	}
}

// Validate wraps the client's ValidateAccount method.
func (a *Accounts) Validate(ctx context.Context, in ValidateInput) (*discovery.ValidationResult, error) {
	if in.Handle == "" {
		return nil, ErrInvalidHandle
	}

	return a.client.ValidateAccount(ctx, in.Handle), nil
}
