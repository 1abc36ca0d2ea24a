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

// Package orchestrator composes discovery, caching, rate limiting and the
// analysis packages into the brand/influencer scoring pipeline.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/jdh4601/fashion-influencer-matcher/analysis/engagement"
	"github.com/jdh4601/fashion-influencer-matcher/analysis/scoring"
	"github.com/jdh4601/fashion-influencer-matcher/analysis/similarity"
	"github.com/jdh4601/fashion-influencer-matcher/analysis/taxonomy"
	"github.com/jdh4601/fashion-influencer-matcher/analysis/text"
	"github.com/jdh4601/fashion-influencer-matcher/cache"
	"github.com/jdh4601/fashion-influencer-matcher/discovery"
	"github.com/jdh4601/fashion-influencer-matcher/ratelimit"
	"github.com/jdh4601/fashion-influencer-matcher/retry"
)

const (
	mediaWindow      = 20 // How many recent posts to analyze per account.
	topHashtags      = 20 // How many top hashtags to keep per account.
	minWordLen       = 2  // Minimum keyword length.
	minCatScore      = 0.1
	maxCategories    = 3  // Top-scoring category slugs kept per account.
	maxCollabSignals = 10 // Collaboration detections kept per account.
	topPostCount     = 3  // Highest-engagement posts kept per account.
)

// igclient describes the subset of discovery.Client the orchestrator needs.
type igclient interface {
	GetProfile(ctx context.Context, handle string, mediaLimit int) (*discovery.Profile, error)
	ValidateAccount(ctx context.Context, handle string) *discovery.ValidationResult
}

// TopPost summarizes one of an account's highest-engagement-rate posts.
type TopPost struct {
	ID             string
	Caption        string
	Permalink      string
	PostedAt       time.Time
	EngagementRate float64
}

// CollabSignal is a single sponsorship/collaboration marker detected on one
// of an account's captions.
type CollabSignal struct {
	PostID            string
	CollaborationType string
	CollabHashtags    []string
	Mentions          []string
}

// Features is the analyzed snapshot of an Instagram account, brand or
// influencer alike.
type Features struct {
	Profile       *discovery.Profile
	Hashtags      []string
	HashtagCounts []text.Count
	Keywords      []string
	Categories    []string
	Tier          engagement.Tier
	Metrics       engagement.Metrics
	TopPosts      []TopPost
	CollabSignals []CollabSignal
}

// Orchestrator wires together discovery, cache, rate limiting and analysis.
type Orchestrator struct {
	discovery  igclient
	cache      *cache.Cache
	limiter    *ratelimit.Limiter
	classifier *taxonomy.Classifier
	scorer     *scoring.Engine
	logger     *slog.Logger
}

// New constructs an Orchestrator.
func New(client igclient, c *cache.Cache, limiter *ratelimit.Limiter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		discovery:  client,
		cache:      c,
		limiter:    limiter,
		classifier: taxonomy.NewClassifier(),
		scorer:     scoring.NewEngine(logger),
		logger:     logger,
	}
}

// AnalyzeBrand fetches and analyzes a brand's account.
func (o *Orchestrator) AnalyzeBrand(ctx context.Context, handle string) (Features, error) {
	return o.analyze(ctx, cache.NamespaceProfile, handle)
}

// AnalyzeInfluencer fetches and analyzes a candidate influencer's account.
func (o *Orchestrator) AnalyzeInfluencer(ctx context.Context, handle string) (Features, error) {
	return o.analyze(ctx, cache.NamespaceProfile, handle)
}

// analyze fetches the profile (cache-first, rate-limited, retried), then
// derives hashtags, keywords, taxonomy categories and engagement metrics.
func (o *Orchestrator) analyze(ctx context.Context, ns cache.Namespace, handle string) (Features, error) {
	var cached discovery.Profile

	if hit, err := o.cache.Get(ctx, ns, handle, &cached); err == nil && hit {
		return o.deriveFeatures(&cached), nil
	}

	profile, err := retry.Do(ctx, retry.DefaultProfilePolicy(), func(ctx context.Context) (*discovery.Profile, error) {
		if o.limiter != nil {
			if err := o.limiter.Acquire(ctx, 1, true, 0); err != nil {
				return nil, err
			}
		}

		return o.discovery.GetProfile(ctx, handle, mediaWindow)
	})
	if err != nil {
		return Features{}, err //nolint:wrapcheck
	}

	o.cache.Set(ctx, ns, handle, profile)

	return o.deriveFeatures(profile), nil
}

// deriveFeatures runs the text/taxonomy/engagement pipeline over a fetched profile.
func (o *Orchestrator) deriveFeatures(p *discovery.Profile) Features {
	var allHashtags, allKeywords []string

	var collabs []CollabSignal

	posts := make([]engagement.Post, 0, len(p.Media))

	for _, m := range p.Media {
		allHashtags = append(allHashtags, text.FilterHashtags(text.ExtractHashtags(m.Caption), 2, true)...)
		allKeywords = append(allKeywords, text.ExtractKeywords(m.Caption, minWordLen)...)

		posts = append(posts, engagement.Post{
			LikeCount:     m.LikeCount,
			CommentsCount: m.CommentsCount,
		})

		if sig := text.DetectCollaborationSignals(m.Caption); sig.IsCollaboration {
			collabs = append(collabs, CollabSignal{
				PostID:            m.ID,
				CollaborationType: sig.CollaborationType,
				CollabHashtags:    sig.CollabHashtags,
				Mentions:          sig.Mentions,
			})
		}
	}

	if len(collabs) > maxCollabSignals {
		collabs = collabs[:maxCollabSignals]
	}

	freq := text.HashtagFrequency(allHashtags, topHashtags)
	topTags := make([]string, 0, len(freq))

	for _, f := range freq {
		topTags = append(topTags, f.Tag)
	}

	scores := o.classifier.Classify(topTags, allKeywords, minCatScore)
	if len(scores) > maxCategories {
		scores = scores[:maxCategories]
	}

	categories := make([]string, 0, len(scores))

	for _, s := range scores {
		categories = append(categories, s.Slug)
	}

	metrics := engagement.Analyze(posts, p.FollowersCount)

	ranked := engagement.TopPosts(posts, p.FollowersCount, topPostCount)
	topPosts := make([]TopPost, 0, len(ranked))

	for _, r := range ranked {
		m := p.Media[r.Index]
		topPosts = append(topPosts, TopPost{
			ID:             m.ID,
			Caption:        m.Caption,
			Permalink:      m.Permalink,
			PostedAt:       m.PostedAt,
			EngagementRate: r.Rate,
		})
	}

	return Features{
		Profile:       p,
		Hashtags:      topTags,
		HashtagCounts: freq,
		Keywords:      dedupe(allKeywords),
		Categories:    categories,
		Tier:          engagement.FollowerTier(p.FollowersCount),
		Metrics:       metrics,
		TopPosts:      topPosts,
		CollabSignals: collabs,
	}
}

// Score computes the final weighted score for a brand/influencer pairing.
func (o *Orchestrator) Score(brand, influencer Features) similarity.Result {
	return similarity.Calculate(
		brand.Hashtags, brand.Keywords,
		influencer.Hashtags, influencer.Keywords,
		similarity.DefaultHashtagWeight, similarity.DefaultKeywordWeight,
	)
}

// Breakdown scores a brand/influencer pairing end to end.
func (o *Orchestrator) Breakdown(brand, influencer Features) scoring.Breakdown {
	sim := o.Score(brand, influencer)
	eng := o.scorer.EngagementScore(influencer.Metrics.AvgEngagementRate, influencer.Profile.FollowersCount)
	cat := o.scorer.CategoryScore(brand.Categories, influencer.Categories)

	return o.scorer.CalculateScore(
		sim.SimilarityScore, eng, cat,
		scoring.DefaultSimilarityWeight, scoring.DefaultEngagementWeight, scoring.DefaultCategoryWeight,
	)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, i := range items {
		if _, ok := seen[i]; ok {
			continue
		}

		seen[i] = struct{}{}
		out = append(out, i)
	}

	return out
}
