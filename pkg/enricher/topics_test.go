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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopicIndexClassifiesDominantTopic(t *testing.T) {
	idx := newTopicIndex(defaultTopicKeywords())
	tags := idx.classify("This guide covers security, authentication, and encryption for your API.", 0.01, 5)
	require.Contains(t, tags, "security")
}

func TestTopicIndexRespectsMaxTopics(t *testing.T) {
	idx := newTopicIndex(defaultTopicKeywords())
	text := "introduction overview basics concept theory tutorial how to test mock deployment deploy data dataset network protocol configuration config"
	tags := idx.classify(text, 0.001, 2)
	require.LessOrEqual(t, len(tags), 2)
}

func TestTopicIndexReturnsNilBelowThreshold(t *testing.T) {
	idx := newTopicIndex(defaultTopicKeywords())
	require.Empty(t, idx.classify("nothing relevant appears in this sentence at all", 0.5, 5))
}

func TestTopicIndexEmptyTextReturnsNil(t *testing.T) {
	idx := newTopicIndex(defaultTopicKeywords())
	require.Empty(t, idx.classify("", 0.01, 5))
}
