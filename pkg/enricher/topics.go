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
	"sort"
	"strings"
)

// defaultTopicKeywords is the spec's default topic→keywords map (§4.3).
func defaultTopicKeywords() map[string][]string {
	return map[string][]string{
		"introduction":     {"introduction", "overview", "getting started", "basics", "fundamentals"},
		"concepts":         {"concept", "theory", "principle", "definition", "model"},
		"tutorial":         {"tutorial", "walkthrough", "step by step", "how to", "example"},
		"reference":        {"reference", "api", "specification", "documentation", "manual"},
		"best_practices":   {"best practice", "recommended", "guideline", "convention", "pattern"},
		"troubleshooting":  {"troubleshoot", "debug", "error", "issue", "fix", "problem"},
		"architecture":     {"architecture", "design", "component", "layer", "module", "structure"},
		"security":         {"security", "authentication", "authorization", "encryption", "vulnerability"},
		"performance":      {"performance", "optimization", "latency", "throughput", "benchmark"},
		"testing":          {"test", "unit test", "integration test", "assertion", "mock"},
		"deployment":       {"deployment", "deploy", "release", "rollout", "production"},
		"data":             {"data", "dataset", "schema", "database", "record"},
		"networking":       {"network", "protocol", "socket", "connection", "bandwidth"},
		"configuration":    {"configuration", "config", "setting", "parameter", "environment variable"},
	}
}

// topicIndex is a reverse keyword→topics lookup, built once so
// classification scans are O(unique keywords) per chunk rather than
// O(topics × keywords).
type topicIndex struct {
	keywordToTopics map[string][]string
}

func newTopicIndex(topicKeywords map[string][]string) *topicIndex {
	idx := &topicIndex{keywordToTopics: make(map[string][]string)}
	for topic, keywords := range topicKeywords {
		for _, kw := range keywords {
			key := strings.ToLower(kw)
			idx.keywordToTopics[key] = append(idx.keywordToTopics[key], topic)
		}
	}
	return idx
}

// classify counts case-insensitive whole-word/phrase hits per topic,
// normalizes by word count, keeps topics at or above threshold, and caps
// the result at maxTopics, highest-scoring first.
func (idx *topicIndex) classify(text string, threshold float64, maxTopics int) []string {
	words := tokenizeWords(text)
	if len(words) == 0 {
		return nil
	}
	lowerText := " " + strings.ToLower(strings.Join(words, " ")) + " "

	scores := make(map[string]float64)
	for keyword, topics := range idx.keywordToTopics {
		count := strings.Count(lowerText, " "+keyword+" ")
		if count == 0 {
			continue
		}
		normalized := float64(count) / float64(len(words))
		for _, topic := range topics {
			scores[topic] += normalized
		}
	}

	type scored struct {
		topic string
		score float64
	}
	var candidates []scored
	for topic, score := range scores {
		if score >= threshold {
			candidates = append(candidates, scored{topic, score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].topic < candidates[j].topic
	})

	if len(candidates) > maxTopics {
		candidates = candidates[:maxTopics]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.topic
	}
	return out
}
