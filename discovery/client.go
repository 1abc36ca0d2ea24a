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

// Package discovery wraps the third-party business-discovery HTTP endpoint,
// mapping its JSON/HTTP errors onto a typed taxonomy.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://graph.facebook.com/v18.0"
	DefaultUserAgent = "fashion-influencer-matcher"
	defaultSelector  = "username,name,biography,followers_count,follows_count,media_count,profile_picture_url,media{id,caption,like_count,comments_count,media_type,permalink,timestamp}"
)

// httpDoer defines an interface to make HTTP requests; satisfied by *http.Client.
type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a business-discovery API client.
type Client struct {
	base             string
	businessAccount  string
	accessToken      string
	client           httpDoer
	logger           *slog.Logger
}

// NewClient instantiates a new discovery API client.
func NewClient(client httpDoer, logger *slog.Logger, businessAccountID, accessToken string) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		base:            DefaultBaseURL,
		businessAccount: businessAccountID,
		accessToken:     accessToken,
		client:          client,
		logger:          logger,
	}
}

// BaseURL overrides the client's base URL (used in tests / local proxies).
func (c *Client) BaseURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return errors.Join(ErrHTTPFailure, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Join(ErrHTTPFailure, errors.New("missing http/https protocol"))
	}

	c.base, _ = strings.CutSuffix(u.String(), "/")

	return nil
}

// rawResponse mirrors the discovery API's wire shape.
type rawResponse struct {
	ID               string `json:"id"`
	BusinessDiscovery *struct {
		Username          string  `json:"username"`
		Name              *string `json:"name"`
		Biography         *string `json:"biography"`
		FollowersCount    int64   `json:"followers_count"`
		FollowsCount      int64   `json:"follows_count"`
		MediaCount        int64   `json:"media_count"`
		ProfilePictureURL *string `json:"profile_picture_url"`
		Media             *struct {
			Data []rawMedia `json:"data"`
		} `json:"media"`
	} `json:"business_discovery"`
	Error *struct {
		Code         int    `json:"code"`
		Message      string `json:"message"`
		ErrorSubcode int    `json:"error_subcode"`
	} `json:"error"`
}

type rawMedia struct {
	ID            string `json:"id"`
	Caption       string `json:"caption"`
	LikeCount     *int64 `json:"like_count"`
	CommentsCount int64  `json:"comments_count"`
	MediaType     string `json:"media_type"`
	Permalink     string `json:"permalink"`
	Timestamp     string `json:"timestamp"`
}

// GetProfile fetches a handle's public business-discovery profile, including
// up to mediaLimit recent posts (0 disables media entirely).
func (c *Client) GetProfile(ctx context.Context, handle string, mediaLimit int) (*Profile, error) {
	selector := defaultSelector
	if mediaLimit <= 0 {
		selector = "username,name,biography,followers_count,follows_count,media_count,profile_picture_url"
	} else {
		selector = strings.Replace(selector, "media{", "media.limit("+strconv.Itoa(mediaLimit)+"){", 1)
	}

	fields := "business_discovery.username(" + handle + "){" + selector + "}"

	endpoint := "/" + c.businessAccount + "?fields=" + url.QueryEscape(fields) + "&access_token=" + url.QueryEscape(c.accessToken)

	c.logger.Info("discovery request", "http.request.method", http.MethodGet, "handle", handle, "media_limit", mediaLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint, nil)
	if err != nil {
		return nil, errors.Join(ErrHTTPFailure, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.client.Do(req)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}

	if err != nil {
		return nil, errors.Join(ErrHTTPFailure, ErrAPI, err)
	}

	var raw rawResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&raw); decodeErr != nil {
		// Parse JSON even on non-2xx; if that fails too, fall back to a status-only APIError.
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &RateLimitedError{RetryAfter: retryAfterFromHeader(resp)}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, errors.Join(ErrInvalidJSON, decodeErr)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitedError{RetryAfter: retryAfterFromHeader(resp)}
	}

	if raw.Error != nil {
		return nil, mapAPIError(handle, resp.StatusCode, raw.Error.Code, raw.Error.Message, resp)
	}

	if resp.StatusCode != http.StatusOK || raw.BusinessDiscovery == nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "missing business_discovery payload"}
	}

	bd := raw.BusinessDiscovery
	profile := &Profile{
		Username:          strings.ToLower(bd.Username),
		Name:              bd.Name,
		FollowersCount:    bd.FollowersCount,
		FollowsCount:      bd.FollowsCount,
		MediaCount:        bd.MediaCount,
		Biography:         bd.Biography,
		ProfilePictureURL: bd.ProfilePictureURL,
		Media:             []Media{},
	}

	if bd.Media != nil {
		for _, m := range bd.Media.Data {
			posted, _ := parseTimestamp(m.Timestamp)
			profile.Media = append(profile.Media, Media{
				ID:            m.ID,
				Caption:       m.Caption,
				LikeCount:     m.LikeCount,
				CommentsCount: m.CommentsCount,
				MediaType:     m.MediaType,
				Permalink:     m.Permalink,
				PostedAt:      posted,
			})
		}
	}

	return profile, nil
}

// ValidateAccount fetches a handle with media_limit=0 and reports a coarse
// existence/business-account summary, without surfacing the underlying error
// taxonomy to callers that only need a yes/no answer.
func (c *Client) ValidateAccount(ctx context.Context, handle string) *ValidationResult {
	_, err := c.GetProfile(ctx, handle, 0)

	switch {
	case err == nil:
		return &ValidationResult{Valid: true, Exists: true, IsBusiness: true}
	case errors.As(err, new(*AccountNotFoundError)):
		return &ValidationResult{Valid: false, Exists: false, IsBusiness: false}
	case errors.As(err, new(*PrivateAccountError)):
		return &ValidationResult{Valid: false, Exists: true, IsBusiness: false}
	default:
		msg := err.Error()
		return &ValidationResult{Valid: false, Exists: false, IsBusiness: false, Error: &msg}
	}
}

func mapAPIError(handle string, status, code int, message string, resp *http.Response) error {
	switch code {
	case codeAccountNotFound:
		return &AccountNotFoundError{Handle: handle}
	case codePrivateAccount:
		return &PrivateAccountError{Handle: handle}
	}

	if status == http.StatusTooManyRequests {
		return &RateLimitedError{RetryAfter: retryAfterFromHeader(resp)}
	}

	return &APIError{Status: status, Code: code, Message: message}
}

func retryAfterFromHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return defaultRetryAfter
	}

	h := resp.Header.Get("Retry-After")
	if h == "" {
		return defaultRetryAfter
	}

	secs, err := strconv.Atoi(h)
	if err != nil || secs <= 0 {
		return defaultRetryAfter
	}

	return time.Duration(secs) * time.Second
}

// parseTimestamp parses RFC 3339 timestamps, tolerating a trailing "Z".
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Join(ErrInvalidJSON, err)
	}

	return t, nil
}
