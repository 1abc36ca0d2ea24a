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

package text

// stopwords is the bilingual (English + Korean) function-word set filtered
// out of keyword extraction. The exact membership is part of the contract,
// not an implementation detail.
var stopwords = map[string]struct{}{
	// English
	"the": {}, "be": {}, "to": {}, "of": {}, "and": {}, "a": {}, "in": {}, "that": {},
	"have": {}, "i": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {}, "he": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {}, "his": {}, "by": {},
	"from": {}, "they": {}, "we": {}, "say": {}, "her": {}, "she": {}, "or": {}, "an": {},
	"will": {}, "my": {}, "one": {}, "all": {}, "would": {}, "there": {}, "their": {},
	"what": {}, "so": {}, "up": {}, "out": {}, "if": {}, "about": {}, "who": {}, "get": {},
	"which": {}, "go": {}, "me": {}, "when": {}, "make": {}, "can": {}, "like": {},
	"time": {}, "no": {}, "just": {}, "him": {}, "know": {}, "take": {}, "people": {},
	"into": {}, "year": {}, "your": {}, "good": {}, "some": {}, "could": {}, "them": {},
	"see": {}, "other": {}, "than": {}, "then": {}, "now": {}, "look": {}, "only": {},
	"come": {}, "its": {}, "over": {}, "think": {}, "also": {}, "back": {}, "after": {},
	"use": {}, "two": {}, "how": {}, "our": {}, "work": {}, "first": {}, "well": {},
	"way": {}, "even": {}, "new": {}, "want": {}, "because": {}, "any": {}, "these": {},
	"give": {}, "day": {}, "most": {}, "us": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"been": {}, "has": {}, "had": {}, "did": {}, "does": {}, "doing": {}, "done": {},
	"am": {}, "being": {}, "having": {},
	// Korean
	"은": {}, "는": {}, "이": {}, "가": {}, "을": {}, "를": {}, "의": {}, "에": {},
	"에서": {}, "로": {}, "으로": {}, "와": {}, "과": {}, "도": {}, "만": {}, "이나": {},
	"나": {}, "부터": {}, "까지": {}, "에게": {}, "한테": {}, "께": {}, "하고": {},
	"이랑": {}, "랑": {}, "으로서": {}, "으로써": {}, "같이": {}, "처럼": {}, "만큼": {},
	"보다": {}, "더": {}, "덜": {}, "많이": {}, "조금": {}, "아주": {}, "너무": {},
	"정말": {}, "진짜": {}, "그냥": {}, "무척": {}, "몹시": {}, "매우": {}, "상당히": {},
	"약간": {}, "다": {}, "좀": {}, "한": {}, "또": {}, "그리고": {}, "하지만": {},
	"그래서": {}, "그러나": {}, "그런데": {}, "또는": {}, "혹은": {}, "아니면": {},
	"그러면": {}, "그렇지만": {}, "그러니까": {}, "오늘": {}, "내일": {}, "어제": {},
	"지금": {}, "방금": {}, "곧": {}, "나중에": {}, "먼저": {}, "항상": {}, "자주": {},
	"가끔": {}, "때때로": {}, "전혀": {}, "결코": {}, "절대": {},
}

// spamHashtags are known follow-for-follow / engagement-pod style tags
// dropped from hashtag filtering.
var spamHashtags = map[string]struct{}{
	"fff": {}, "f4f": {}, "follow4follow": {}, "followforfollow": {}, "l4l": {},
	"like4like": {}, "likeforlike": {}, "tagsforlikes": {}, "tflers": {},
	"followme": {}, "followback": {}, "pleasefollow": {}, "follow4followback": {},
	"teamfollowback": {}, "followall": {}, "instafollow": {}, "followher": {},
	"followhim": {}, "followforlike": {}, "likeback": {}, "likes4likes": {},
	"likesforlikes": {}, "spam": {}, "spam4spam": {}, "recent4recent": {}, "r4r": {},
	"likebackteam": {}, "followbackteam": {}, " gaintrain": {}, "gainpost": {},
	"sdv": {}, "seguidores": {}, "followtrick": {}, "chuvadelikes": {},
	"chuvadeseguidores": {}, "followmenow": {}, "followstagram": {},
	"followplease": {}, "follow4like": {}, "instalike": {}, "likealways": {},
	"liketeam": {}, "likeall": {}, "likebackalways": {}, "likeplease": {},
	"liking": {}, "liker": {}, "liked": {}, "likes": {}, "likeme": {},
}
