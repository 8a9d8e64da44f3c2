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
	"strings"

	"github.com/coursecore/ragcore/pkg/model"
)

// EntityExtractor emits named entities found in text. Callers may
// substitute an NLP-service-backed implementation; the zero value must be
// tolerated as an empty result, per §4.3.
type EntityExtractor interface {
	Extract(text string) []model.Entity
}

var (
	datePattern = regexp.MustCompile(
		`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b` +
			`|\b\d{1,2}/\d{1,2}/\d{2,4}\b` +
			`|\b\d{4}-\d{2}-\d{2}\b`)

	capitalizedSpanPattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,3})\b`)

	orgSuffixes = map[string]struct{}{
		"inc": {}, "corp": {}, "corporation": {}, "llc": {}, "ltd": {},
		"university": {}, "institute": {}, "foundation": {}, "association": {},
	}
)

// DefaultEntityExtractor is a regex/gazetteer-based extractor: dates by
// pattern, and capitalized multi-word spans classified as organization when
// they end in a recognizable corporate/institutional suffix, else person.
type DefaultEntityExtractor struct{}

func (DefaultEntityExtractor) Extract(text string) []model.Entity {
	var out []model.Entity
	seen := make(map[string]struct{})

	for _, m := range datePattern.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, model.Entity{Text: m, Type: "date"})
	}

	for _, m := range capitalizedSpanPattern.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		words := strings.Fields(m)
		if len(words) < 2 {
			continue // single capitalized words are too noisy (sentence starts, acronyms)
		}
		seen[m] = struct{}{}
		out = append(out, model.Entity{Text: m, Type: classifySpan(words)})
	}

	return out
}

func classifySpan(words []string) string {
	last := strings.ToLower(strings.TrimRight(words[len(words)-1], "."))
	if _, ok := orgSuffixes[last]; ok {
		return "organization"
	}
	return "person"
}
