// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package enricher

import (
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9]*`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "it": {}, "its": {}, "as": {}, "by": {}, "from": {}, "into": {}, "not": {},
}

type keywordCandidate struct {
	text      string
	score     float64
	firstSeen int
}

// extractKeywords scores 1..3-gram candidates by inverse frequency (lower
// score is more important, per §4.3), filters near-identical surface forms
// above similarityThreshold, and returns up to numKeywords strings ordered
// by ascending score.
func extractKeywords(text string, numKeywords int, similarityThreshold float64) []string {
	words := tokenizeWords(text)
	if len(words) == 0 {
		return nil
	}

	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	order := make([]string, 0)

	for n := 1; n <= 3; n++ {
		for i := 0; i+n <= len(words); i++ {
			if n == 1 && isStopword(words[i]) {
				continue
			}
			gram := strings.Join(words[i:i+n], " ")
			if _, seen := freq[gram]; !seen {
				order = append(order, gram)
				firstSeen[gram] = i
			}
			freq[gram]++
		}
	}

	candidates := make([]keywordCandidate, 0, len(order))
	for _, gram := range order {
		candidates = append(candidates, keywordCandidate{
			text:      gram,
			score:     1.0 / float64(freq[gram]),
			firstSeen: firstSeen[gram],
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].firstSeen < candidates[j].firstSeen
	})

	var kept []keywordCandidate
	for _, c := range candidates {
		if len(kept) >= numKeywords {
			break
		}
		if isNearDuplicateSurfaceForm(c.text, kept, similarityThreshold) {
			continue
		}
		kept = append(kept, c)
	}

	out := make([]string, len(kept))
	for i, c := range kept {
		out[i] = c.text
	}
	return out
}

// isNearDuplicateSurfaceForm reports whether candidate's token set overlaps
// an already-kept keyword's token set at or above threshold Jaccard
// similarity, so e.g. "machine learning" doesn't also keep "learning
// machine" as a distinct keyword.
func isNearDuplicateSurfaceForm(candidate string, kept []keywordCandidate, threshold float64) bool {
	candidateSet := tokenSet(candidate)
	for _, k := range kept {
		if jaccardSets(candidateSet, tokenSet(k.text)) >= threshold {
			return true
		}
	}
	return false
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func jaccardSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenizeWords(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	return matches
}

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}
