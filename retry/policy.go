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

// Package retry classifies errors as retryable vs terminal and wraps calls
// with exponential backoff and jitter, honoring rate-limit retry hints.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jdh4601/fashion-influencer-matcher/discovery"
)

// Policy configures a retry schedule.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	ExpBase    float64
}

// DefaultProfilePolicy is the default retry schedule for profile fetches.
func DefaultProfilePolicy() Policy {
	return Policy{MaxRetries: 3, BaseDelay: 2 * time.Second, MaxDelay: 60 * time.Second, ExpBase: 2}
}

// DefaultValidationPolicy is the default retry schedule for account
// validation calls.
func DefaultValidationPolicy() Policy {
	return Policy{MaxRetries: 2, BaseDelay: 1 * time.Second, MaxDelay: 30 * time.Second, ExpBase: 2}
}

// schedule is a backoff.BackOff implementation computing its own
// exponential-with-jitter delay math instead of cenkalti/backoff's own
// multiplier/jitter, while still plugging into backoff.Retry's call loop.
type schedule struct {
	policy  Policy
	attempt int
	// pendingRateLimitDelay, when non-zero, overrides the exponential
	// schedule for the next NextBackOff call (set by the RateLimited case).
	pendingRateLimitDelay time.Duration
}

func (s *schedule) NextBackOff() time.Duration {
	if s.attempt >= s.policy.MaxRetries {
		return backoff.Stop
	}

	if s.pendingRateLimitDelay > 0 {
		d := s.pendingRateLimitDelay
		s.pendingRateLimitDelay = 0
		s.attempt++
		return d
	}

	delay := float64(s.policy.BaseDelay) * math.Pow(s.policy.ExpBase, float64(s.attempt))
	if delay > float64(s.policy.MaxDelay) {
		delay = float64(s.policy.MaxDelay)
	}

	jitter := 0.75 + rand.Float64()*0.5 // uniform in [0.75, 1.25]
	s.attempt++

	return time.Duration(delay * jitter)
}

func (s *schedule) Reset() {
	s.attempt = 0
	s.pendingRateLimitDelay = 0
}

// Do runs fn under the given policy: terminal errors (AccountNotFound,
// PrivateAccount) propagate immediately; RateLimited sleeps exactly
// min(retry_after, max_delay) before the next attempt; other errors use the
// exponential-with-jitter schedule. After MaxRetries failed attempts the
// last error is surfaced unchanged.
func Do[T any](ctx context.Context, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	sched := &schedule{policy: policy}

	var result T

	operation := func() error {
		var err error
		result, err = fn(ctx)
		if err == nil {
			return nil
		}

		if isTerminal(err) {
			return backoff.Permanent(err)
		}

		var rle *discovery.RateLimitedError
		if errors.As(err, &rle) {
			retryAfter := rle.RetryAfter
			if retryAfter > policy.MaxDelay {
				retryAfter = policy.MaxDelay
			}

			sched.pendingRateLimitDelay = retryAfter
		}

		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(sched, ctx))

	return result, err
}

// isTerminal reports whether err is a terminal error: AccountNotFound and
// PrivateAccount are not retried.
func isTerminal(err error) bool {
	return errors.Is(err, discovery.ErrAccountNotFound) || errors.Is(err, discovery.ErrPrivateAccount)
}
