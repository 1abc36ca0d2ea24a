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

// Package text extracts hashtags, mentions, keywords and collaboration
// signals from caption strings.
package text

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	mentionRe = regexp.MustCompile(`@(\w+)`)
	urlRe     = regexp.MustCompile(`https?://\S+`)
	wordRe    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	keywordRe = regexp.MustCompile(`^[A-Za-z가-힣]+$`)
)

// ExtractHashtags returns lowercased hashtags (without '#') found in text.
func ExtractHashtags(caption string) []string {
	if caption == "" {
		return nil
	}

	matches := hashtagRe.FindAllStringSubmatch(caption, -1)
	out := make([]string, 0, len(matches))

	for _, m := range matches {
		tag := strings.ToLower(strings.TrimSpace(m[1]))
		if tag != "" {
			out = append(out, tag)
		}
	}

	return out
}

// ExtractMentions returns lowercased usernames (without '@') found in text.
func ExtractMentions(caption string) []string {
	if caption == "" {
		return nil
	}

	matches := mentionRe.FindAllStringSubmatch(caption, -1)
	out := make([]string, 0, len(matches))

	for _, m := range matches {
		name := strings.ToLower(strings.TrimSpace(m[1]))
		if name != "" {
			out = append(out, name)
		}
	}

	return out
}

// ExtractKeywords strips hashtags, mentions and URLs, tokenizes remaining
// English/Korean words, lowercases, and drops stopwords and short tokens.
func ExtractKeywords(caption string, minLength int) []string {
	if caption == "" {
		return nil
	}

	stripped := hashtagRe.ReplaceAllString(caption, "")
	stripped = mentionRe.ReplaceAllString(stripped, "")
	stripped = urlRe.ReplaceAllString(stripped, "")

	words := wordRe.FindAllString(stripped, -1)
	out := make([]string, 0, len(words))

	for _, w := range words {
		if !keywordRe.MatchString(w) {
			continue
		}

		lw := strings.ToLower(w)
		if utf8.RuneCountInString(lw) < minLength {
			continue
		}

		if _, stop := stopwords[lw]; stop {
			continue
		}

		out = append(out, lw)
	}

	return out
}

// FilterHashtags drops short, spam, and purely numeric hashtags.
func FilterHashtags(hashtags []string, minLength int, removeSpam bool) []string {
	filtered := make([]string, 0, len(hashtags))

	for _, tag := range hashtags {
		if utf8.RuneCountInString(tag) < minLength {
			continue
		}

		if removeSpam {
			if _, spam := spamHashtags[tag]; spam {
				continue
			}
		}

		if isDigits(tag) {
			continue
		}

		filtered = append(filtered, tag)
	}

	return filtered
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	_, err := strconv.Atoi(s)

	return err == nil
}

// Count pairs a hashtag with its occurrence count.
type Count struct {
	Tag   string
	Count int
}

// HashtagFrequency returns the topN most common hashtags, descending by
// count, ties broken by first-seen order (matching Counter.most_common).
func HashtagFrequency(hashtags []string, topN int) []Count {
	counts := map[string]int{}
	order := []string{}

	for _, tag := range hashtags {
		if _, seen := counts[tag]; !seen {
			order = append(order, tag)
		}
		counts[tag]++
	}

	result := make([]Count, 0, len(order))
	for _, tag := range order {
		result = append(result, Count{Tag: tag, Count: counts[tag]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if topN >= 0 && len(result) > topN {
		result = result[:topN]
	}

	return result
}

// collaboration keyword sets, ordered by precedence: paid, then gifted, then collab.
var (
	paidTags   = []string{"ad", "sponsored", "partner", "partnership", "광고", "유료광고", "파트너십"}
	giftedTags = []string{"gifted", "pr", "제품제공", "review", "리뷰"}
	collabTags = []string{"collab", "협찬", "협업"}

	allCollabTags = []string{
		"ad", "sponsored", "partner", "partnership", "collab",
		"협찬", "광고", "제품제공", "파트너십", "협업", "유료광고",
		"gifted", "pr", "review", "리뷰", "내돈내산",
	}
)

// CollaborationSignal is the result of scanning a caption for sponsorship markers.
type CollaborationSignal struct {
	IsCollaboration    bool
	CollaborationType  string // "paid", "gifted", "collab", or "" when none
	CollabHashtags     []string
	Mentions           []string
}

// DetectCollaborationSignals scans a caption for known sponsorship hashtags
// and @mentions. Typing follows the first category matched, in the order
// paid > gifted > collab.
func DetectCollaborationSignals(caption string) CollaborationSignal {
	lower := strings.ToLower(caption)

	var found []string
	for _, tag := range allCollabTags {
		if strings.Contains(lower, "#"+tag) {
			found = append(found, tag)
		}
	}

	mentions := ExtractMentions(caption)

	collabType := ""
	switch {
	case containsAny(found, paidTags):
		collabType = "paid"
	case containsAny(found, giftedTags):
		collabType = "gifted"
	case containsAny(found, collabTags):
		collabType = "collab"
	}

	return CollaborationSignal{
		IsCollaboration:   len(found) > 0 || len(mentions) > 0,
		CollaborationType: collabType,
		CollabHashtags:    found,
		Mentions:          mentions,
	}
}

func containsAny(haystack, needles []string) bool {
	set := map[string]struct{}{}
	for _, n := range needles {
		set[n] = struct{}{}
	}

	for _, h := range haystack {
		if _, ok := set[h]; ok {
			return true
		}
	}

	return false
}
