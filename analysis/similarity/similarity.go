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

// Package similarity implements the weighted-Jaccard brand/influencer
// similarity algorithm, plus an optional TF-IDF variant and a bonus
// caption-tone similarity signal.
package similarity

import (
	"math"
	"sort"
	"strings"
)

const (
	DefaultHashtagWeight = 0.7
	DefaultKeywordWeight = 0.3
)

// Result is the full similarity breakdown for a brand/influencer pair.
type Result struct {
	SimilarityScore         float64
	HashtagSimilarity       float64
	KeywordSimilarity       float64
	CommonHashtags          []string
	CommonKeywords          []string
	BrandHashtagCount       int
	InfluencerHashtagCount  int
	OverlapHashtagCount     int
}

// Calculate computes the weighted-Jaccard similarity between a brand and an
// influencer's hashtag/keyword sets.
func Calculate(brandHashtags, brandKeywords, influencerHashtags, influencerKeywords []string, hashtagWeight, keywordWeight float64) Result {
	brandTags := toLowerSet(brandHashtags)
	brandWords := toLowerSet(brandKeywords)
	inflTags := toLowerSet(influencerHashtags)
	inflWords := toLowerSet(influencerKeywords)

	hashtagSim := jaccard(brandTags, inflTags)
	keywordSim := jaccard(brandWords, inflWords)

	weighted := hashtagSim*hashtagWeight + keywordSim*keywordWeight

	common := intersect(brandTags, inflTags)
	commonWords := intersect(brandWords, inflWords)

	return Result{
		SimilarityScore:        round1(weighted * 100),
		HashtagSimilarity:      round1(hashtagSim * 100),
		KeywordSimilarity:      round1(keywordSim * 100),
		CommonHashtags:         common,
		CommonKeywords:         commonWords,
		BrandHashtagCount:      len(brandTags),
		InfluencerHashtagCount: len(inflTags),
		OverlapHashtagCount:    len(common),
	}
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	union := map[string]struct{}{}
	for k := range a {
		union[k] = struct{}{}
	}
	for k := range b {
		union[k] = struct{}{}
	}

	if len(union) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}

// TFIDF computes the rare-hashtag-weighted Jaccard variant: given per-side
// hashtag term counts and an optional per-tag IDF table (default 1.0 for
// unknown tags), it returns sum(min(tf·idf))/sum(max(tf·idf)) · 100.
func TFIDF(brandHashtags, influencerHashtags []string, idf map[string]float64) float64 {
	brandCounts := countLower(brandHashtags)
	inflCounts := countLower(influencerHashtags)

	allTags := map[string]struct{}{}
	for t := range brandCounts {
		allTags[t] = struct{}{}
	}
	for t := range inflCounts {
		allTags[t] = struct{}{}
	}

	var weightedIntersection, weightedUnion float64

	for tag := range allTags {
		tagIDF := 1.0
		if v, ok := idf[tag]; ok {
			tagIDF = v
		}

		brandWeight := float64(brandCounts[tag]) * tagIDF
		inflWeight := float64(inflCounts[tag]) * tagIDF

		weightedIntersection += math.Min(brandWeight, inflWeight)
		weightedUnion += math.Max(brandWeight, inflWeight)
	}

	if weightedUnion == 0 {
		return 0
	}

	return round1((weightedIntersection / weightedUnion) * 100)
}

// CaptionToneSimilarity is a supplementary, non-scoring signal comparing
// average caption length, emoji usage and question-mark frequency between a
// brand and an influencer. Not part of ScoringEngine's weighted aggregate.
func CaptionToneSimilarity(brandCaptions, influencerCaptions []string) float64 {
	brandTone := analyzeTone(brandCaptions)
	inflTone := analyzeTone(influencerCaptions)

	if brandTone.avgLength == 0 || inflTone.avgLength == 0 {
		return 50.0
	}

	maxLen := math.Max(brandTone.avgLength, inflTone.avgLength)
	lengthDiff := math.Abs(brandTone.avgLength-inflTone.avgLength) / maxLen
	emojiDiff := math.Abs(brandTone.emojiRatio - inflTone.emojiRatio)
	questionDiff := math.Abs(brandTone.questionRatio - inflTone.questionRatio)

	avgDiff := (lengthDiff + emojiDiff + questionDiff) / 3
	sim := (1 - avgDiff) * 100

	return round1(math.Max(0, math.Min(100, sim)))
}

type tone struct {
	avgLength     float64
	emojiRatio    float64
	questionRatio float64
}

var toneEmojis = []string{"😀", "✨", "❤️"}

func analyzeTone(captions []string) tone {
	if len(captions) == 0 {
		return tone{}
	}

	var totalLength, emojiCount, questionCount float64

	for _, c := range captions {
		totalLength += float64(len([]rune(c)))

		for _, e := range toneEmojis {
			emojiCount += float64(strings.Count(c, e))
		}

		questionCount += float64(strings.Count(c, "?") + strings.Count(c, "？"))
	}

	n := float64(len(captions))

	return tone{
		avgLength:     totalLength / n,
		emojiRatio:    emojiCount / n,
		questionRatio: questionCount / n,
	}
}

func toLowerSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, i := range items {
		m[strings.ToLower(i)] = struct{}{}
	}

	return m
}

func countLower(items []string) map[string]int {
	m := map[string]int{}
	for _, i := range items {
		m[strings.ToLower(i)]++
	}

	return m
}

func intersect(a, b map[string]struct{}) []string {
	out := []string{}
	for k := range a {
		if _, ok := b[k]; ok {
			out = append(out, k)
		}
	}

	sort.Strings(out)

	return out
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
