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

// Package scoring aggregates similarity, engagement and category scores
// into a final weighted score and letter grade, and ranks result sets.
package scoring

import (
	"log/slog"
	"math"
	"sort"

	"github.com/jdh4601/fashion-influencer-matcher/analysis/engagement"
)

const (
	DefaultSimilarityWeight = 0.40
	DefaultEngagementWeight = 0.35
	DefaultCategoryWeight   = 0.25
)

// gradeBand is a [min,max] final-score band. grade assigns the highest band
// whose min the score reaches, so a score between two bands (e.g. 79.5)
// takes the higher grade.
type gradeBand struct {
	min, max float64
}

var grades = []struct {
	grade string
	band  gradeBand
}{
	{"A", gradeBand{80, 100}},
	{"B", gradeBand{60, 79}},
	{"C", gradeBand{40, 59}},
	{"D", gradeBand{0, 39}},
}

// Breakdown is the full scoring result for one influencer.
type Breakdown struct {
	SimilarityScore   float64
	EngagementScore   float64
	CategoryScore     float64
	FinalScore        float64
	Grade             string
	SimilarityWeight  float64
	EngagementWeight  float64
	CategoryWeight    float64
}

// Engine aggregates component scores into a final weighted grade.
type Engine struct {
	logger *slog.Logger
}

// NewEngine constructs a scoring Engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{logger: logger}
}

// CalculateScore computes the weighted final score and grade. If the three
// weights don't sum to 1.0 (within 0.01), they are normalized and a warning
// is logged.
func (e *Engine) CalculateScore(similarityScore, engagementScore, categoryScore, similarityWeight, engagementWeight, categoryWeight float64) Breakdown {
	total := similarityWeight + engagementWeight + categoryWeight
	if math.Abs(total-1.0) > 0.01 {
		e.logger.Warn("scoring weights don't sum to 1.0, normalizing", "total", total)
		similarityWeight /= total
		engagementWeight /= total
		categoryWeight /= total
	}

	final := similarityScore*similarityWeight + engagementScore*engagementWeight + categoryScore*categoryWeight

	return Breakdown{
		SimilarityScore:  round1(similarityScore),
		EngagementScore:  round1(engagementScore),
		CategoryScore:    round1(categoryScore),
		FinalScore:       round1(final),
		Grade:            grade(final),
		SimilarityWeight: similarityWeight,
		EngagementWeight: engagementWeight,
		CategoryWeight:   categoryWeight,
	}
}

func grade(score float64) string {
	for _, g := range grades {
		if score >= g.band.min {
			return g.grade
		}
	}

	return "D"
}

// bandFloor returns a grade's minimum score, or 0 for an unknown grade.
func bandFloor(g string) float64 {
	for _, entry := range grades {
		if entry.grade == g {
			return entry.band.min
		}
	}

	return 0
}

// EngagementScore delegates to the engagement package for consistency with
// EngagementCalculator.quality_score.
func (e *Engine) EngagementScore(engagementRate float64, followers int64) float64 {
	return float64(engagement.QualityScore(engagementRate, followers))
}

// CategoryScore is the Jaccard of two category-slug sets, times 100; either
// side empty returns the 50.0 neutral default (distinct from
// taxonomy.Classifier.MatchScore, which returns 0 in that case).
func (e *Engine) CategoryScore(brandCategories, influencerCategories []string) float64 {
	if len(brandCategories) == 0 || len(influencerCategories) == 0 {
		return 50.0
	}

	brand := toSet(brandCategories)
	infl := toSet(influencerCategories)

	union := map[string]struct{}{}
	for s := range brand {
		union[s] = struct{}{}
	}
	for s := range infl {
		union[s] = struct{}{}
	}

	if len(union) == 0 {
		return 0
	}

	intersection := 0
	for s := range brand {
		if _, ok := infl[s]; ok {
			intersection++
		}
	}

	return round1((float64(intersection) / float64(len(union))) * 100)
}

// Rank filters a result set by minGrade (if non-empty) and sorts descending
// by final score.
func Rank(results []Breakdown, minGrade string) []Breakdown {
	out := results

	if minGrade != "" {
		floor := bandFloor(minGrade)
		filtered := make([]Breakdown, 0, len(results))

		for _, r := range results {
			if r.FinalScore >= floor {
				filtered = append(filtered, r)
			}
		}

		out = filtered
	}

	sorted := make([]Breakdown, len(out))
	copy(sorted, out)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalScore > sorted[j].FinalScore
	})

	return sorted
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, i := range items {
		m[i] = struct{}{}
	}

	return m
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
