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

package discovery

import "time"

// Profile is the business-discovery response for a single handle.
type Profile struct {
	Username           string  `json:"username" description:"Lowercased Instagram handle"`
	Name               *string `json:"name,omitempty" description:"Display name, if set"`
	FollowersCount     int64   `json:"followers_count" description:"Follower count"`
	FollowsCount       int64   `json:"follows_count" description:"Follow count"`
	MediaCount         int64   `json:"media_count" description:"Total media count"`
	Biography          *string `json:"biography,omitempty" description:"Free-text bio"`
	ProfilePictureURL  *string `json:"profile_picture_url,omitempty" description:"Avatar URL"`
	Media              []Media `json:"media" description:"Recent media, up to the requested media_limit"`
}

// Media is a single post returned nested under a Profile.
type Media struct {
	ID             string     `json:"id" description:"Discovery API media id"`
	Caption        string     `json:"caption" description:"Post caption text, empty if absent"`
	LikeCount      *int64     `json:"like_count,omitempty" description:"Like count; absent (not zero) when the API omits it"`
	CommentsCount  int64      `json:"comments_count" description:"Comment count"`
	MediaType      string     `json:"media_type" description:"IMAGE, VIDEO or CAROUSEL_ALBUM"`
	Permalink      string     `json:"permalink" description:"Public post URL"`
	PostedAt       time.Time  `json:"timestamp" description:"Post creation time, RFC 3339"`
}

// ValidationResult is returned by ValidateAccount.
type ValidationResult struct {
	Valid      bool    `json:"valid" description:"True only when the handle exists and is a discoverable business/creator account"`
	Exists     bool    `json:"exists" description:"False when the handle could not be resolved at all"`
	IsBusiness bool    `json:"is_business" description:"False when the handle exists but is private/non-business"`
	Error      *string `json:"error,omitempty" description:"Set for indeterminate outcomes (rate limited or transient API error)"`
}
