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

// Package engagement computes per-post and aggregate engagement rates,
// tier classification, tier-relative percentile and quality score.
package engagement

import (
	"math"
	"sort"
)

// Tier is a follower-count band used to normalize engagement expectations.
type Tier string

const (
	TierNano  Tier = "nano"
	TierMicro Tier = "micro"
	TierMid   Tier = "mid"
	TierMacro Tier = "macro"
)

type tierRange struct {
	min, max float64
}

var tiers = map[Tier]tierRange{
	TierNano:  {1_000, 10_000},
	TierMicro: {10_000, 50_000},
	TierMid:   {50_000, 200_000},
	TierMacro: {200_000, math.Inf(1)},
}

// Benchmark is a tier's low/avg/high engagement-rate thresholds, in percent.
type Benchmark struct {
	Low, Avg, High float64
}

var benchmarks = map[Tier]Benchmark{
	TierNano:  {Low: 3.0, Avg: 5.0, High: 8.0},
	TierMicro: {Low: 2.0, Avg: 3.5, High: 6.0},
	TierMid:   {Low: 1.5, Avg: 2.5, High: 4.0},
	TierMacro: {Low: 1.0, Avg: 1.8, High: 3.0},
}

// FollowerTier returns the follower-count band for followers. Below 1,000
// followers defaults to nano (the tier map's nano range itself starts at
// 1,000; anything below that floor is just nano, not a distinct band).
func FollowerTier(followers int64) Tier {
	f := float64(followers)

	for tier, r := range tiers {
		if f >= r.min && f < r.max {
			return tier
		}
	}

	return TierNano
}

// Post is the minimal per-post data the calculator needs.
type Post struct {
	LikeCount     *int64 // nil means "absent", distinct from zero
	CommentsCount int64
}

// Rate computes a single post's engagement rate as a percentage, rounded to
// 2 decimals. followers=0 always yields 0.
func Rate(post Post, followers int64) float64 {
	if followers == 0 {
		return 0
	}

	var engagement float64
	if post.LikeCount != nil {
		engagement = float64(*post.LikeCount)
	} else {
		engagement = float64(post.CommentsCount) * 3
	}

	rate := (engagement / float64(followers)) * 100

	return round2(rate)
}

// Metrics is the averaged engagement summary for a set of posts.
type Metrics struct {
	AvgEngagementRate  float64
	AvgLikes           float64
	AvgComments        float64
	PostsAnalyzed      int
	TierPercentile     float64
	QualityScore       int
}

// AverageMetrics computes the arithmetic mean engagement rate, likes and
// comments across posts.
func AverageMetrics(posts []Post, followers int64) Metrics {
	if len(posts) == 0 {
		return Metrics{}
	}

	var sumRate, sumLikes, sumComments float64

	for _, p := range posts {
		sumRate += Rate(p, followers)

		if p.LikeCount != nil {
			sumLikes += float64(*p.LikeCount)
		}

		sumComments += float64(p.CommentsCount)
	}

	n := float64(len(posts))

	return Metrics{
		AvgEngagementRate: round2(sumRate / n),
		AvgLikes:          math.Round(sumLikes / n),
		AvgComments:       math.Round(sumComments / n),
		PostsAnalyzed:     len(posts),
	}
}

// TierPercentile places rate within its follower tier's benchmark, 0-100.
func TierPercentile(rate float64, followers int64) float64 {
	b := benchmarks[FollowerTier(followers)]

	var percentile float64

	switch {
	case rate <= b.Low:
		percentile = (rate / b.Low) * 25
	case rate <= b.Avg:
		percentile = 25 + ((rate-b.Low)/(b.Avg-b.Low))*25
	case rate <= b.High:
		percentile = 50 + ((rate-b.Avg)/(b.High-b.Avg))*25
	default:
		excess := rate - b.High
		percentile = math.Min(100, 75+(excess/b.High)*25)
	}

	return round1(percentile)
}

// QualityScore computes the 0-100 integer engagement quality score.
func QualityScore(rate float64, followers int64) int {
	b := benchmarks[FollowerTier(followers)]

	var base float64

	switch {
	case rate >= b.High:
		base = 90
	case rate >= b.Avg:
		ratio := (rate - b.Avg) / (b.High - b.Avg)
		base = 60 + ratio*30
	case rate >= b.Low:
		ratio := (rate - b.Low) / (b.Avg - b.Low)
		base = 30 + ratio*30
	default:
		ratio := math.Min(1.0, rate/b.Low)
		base = ratio * 30
	}

	score := math.Round(base)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// Analyze computes the full Metrics, including tier percentile and quality score.
func Analyze(posts []Post, followers int64) Metrics {
	m := AverageMetrics(posts, followers)
	m.TierPercentile = TierPercentile(m.AvgEngagementRate, followers)
	m.QualityScore = QualityScore(m.AvgEngagementRate, followers)

	return m
}

// RankedPost pairs a caller-supplied post index with its computed rate, for
// top-N selection without the calculator needing to know the post's full shape.
type RankedPost struct {
	Index int
	Rate  float64
}

// TopPosts returns the indices (into posts) of the top n posts by engagement
// rate, descending.
func TopPosts(posts []Post, followers int64, n int) []RankedPost {
	ranked := make([]RankedPost, len(posts))
	for i, p := range posts {
		ranked[i] = RankedPost{Index: i, Rate: Rate(p, followers)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rate > ranked[j].Rate
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
