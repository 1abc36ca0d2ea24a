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

package taxonomy

import (
	"sort"
	"strings"
)

// Score pairs a category slug with its match score.
type Score struct {
	Slug  string
	Score float64
}

// Classifier classifies hashtags/keywords into the fixed fashion taxonomy.
type Classifier struct {
	categories []Category
}

// NewClassifier constructs a Classifier over the default 10-category taxonomy.
func NewClassifier() *Classifier {
	return &Classifier{categories: Categories}
}

// Classify scores every category by keyword overlap and returns those
// scoring at least minScore, sorted descending.
func (c *Classifier) Classify(hashtags, keywords []string, minScore float64) []Score {
	terms := make(map[string]struct{}, len(hashtags)+len(keywords))
	for _, h := range hashtags {
		terms[strings.ToLower(h)] = struct{}{}
	}
	for _, k := range keywords {
		terms[strings.ToLower(k)] = struct{}{}
	}

	var scores []Score

	for _, cat := range c.categories {
		matches := 0
		for term := range terms {
			if _, ok := cat.Keywords[term]; ok {
				matches++
			}
		}

		if matches == 0 {
			continue
		}

		score := (float64(matches) / float64(len(cat.Keywords))) * cat.Weight
		if score >= minScore {
			scores = append(scores, Score{Slug: cat.Slug, Score: score})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return scores
}

// Primary returns the top-scoring category, or ("", 0) if Classify finds none.
func (c *Classifier) Primary(hashtags, keywords []string) (string, float64) {
	scores := c.Classify(hashtags, keywords, 0.1)
	if len(scores) == 0 {
		return "", 0
	}

	return scores[0].Slug, scores[0].Score
}

// MatchScore computes the Jaccard coefficient between two category-slug
// sets, returning 0 if either side is empty. This is distinct from
// scoring.CategoryScore, which returns a 50.0 neutral default in that case.
func (c *Classifier) MatchScore(brandSlugs, influencerSlugs []string) float64 {
	if len(brandSlugs) == 0 || len(influencerSlugs) == 0 {
		return 0
	}

	brand := toSet(brandSlugs)
	infl := toSet(influencerSlugs)

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

	return float64(intersection) / float64(len(union))
}

// Name returns a category's display name, or slug itself if unknown.
func (c *Classifier) Name(slug string) string {
	for _, cat := range c.categories {
		if cat.Slug == slug {
			return cat.Name
		}
	}

	return slug
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, i := range items {
		m[i] = struct{}{}
	}

	return m
}
