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

// Package webserver provides the inbound HTTP API for submitting and
// inspecting brand/influencer matching jobs.
package webserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	// Permissive http.Server timeout values.
	serverIdleTimeout  = 120
	serverReadTimeout  = 10
	serverWriteTimeout = 10
)

// Create sets up an HTTP server with all the app routes mounted.
func Create(ctx context.Context, jobs jobservice, accounts accountservice, logger *slog.Logger) (*http.Server, error) {
	jobsHandler := WrapJobsService(jobs)
	accountsHandler := WrapAccountsService(accounts)

	mux := &http.ServeMux{}

	mux.Handle("POST /jobs", HandleWithInput(logger, jobsHandler.CreateJob))
	mux.Handle("GET /jobs", HandleWithInput(logger, jobsHandler.ListJobs))
	mux.Handle("GET /jobs/{id}", HandleWithRequest(logger, jobsHandler.GetJob))
	mux.Handle("GET /jobs/{id}/results", HandleWithRequest(logger, jobsHandler.GetResults))
	mux.Handle("GET /accounts/{handle}/validate", HandleWithRequest(logger, accountsHandler.Validate))

	return &http.Server{ //nolint:exhaustruct // Defaults are ok
		Addr:              ":10000",
		Handler:           mux,
		IdleTimeout:       serverIdleTimeout * time.Second,
		ReadHeaderTimeout: serverReadTimeout * time.Second,
		ReadTimeout:       serverReadTimeout * time.Second,
		WriteTimeout:      serverWriteTimeout * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}, nil
}
