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

	"github.com/jdh4601/fashion-influencer-matcher/discovery"
	"github.com/jdh4601/fashion-influencer-matcher/service"
)

// accountservice describes a service that can validate Instagram handles.
type accountservice interface {
	Validate(context.Context, service.ValidateInput) (*discovery.ValidationResult, error)
}

// AccountsHandler wraps an accountservice to call its methods passing
// arguments read from an HTTP request's path.
type AccountsHandler struct {
	svc accountservice
}

// WrapAccountsService wraps an accountservice.
func WrapAccountsService(svc accountservice) *AccountsHandler {
	return &AccountsHandler{
		svc: svc,
	}
}

// Validate wraps the service's Validate method.
func (a *AccountsHandler) Validate(r *http.Request) (*discovery.ValidationResult, error) {
	return a.svc.Validate(r.Context(), service.ValidateInput{Handle: r.PathValue("handle")}) //nolint:wrapcheck
}
