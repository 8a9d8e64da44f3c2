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

func TestExtractKeywordsEmptyTextReturnsNil(t *testing.T) {
	require.Empty(t, extractKeywords("", 10, 0.9))
}

func TestExtractKeywordsSkipsStopwordUnigrams(t *testing.T) {
	out := extractKeywords("the of and", 10, 0.9)
	require.NotContains(t, out, "the")
	require.NotContains(t, out, "of")
	require.NotContains(t, out, "and")
}

func TestExtractKeywordsRespectsNumKeywordsCap(t *testing.T) {
	out := extractKeywords("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda", 3, 0.9)
	require.Len(t, out, 3)
}

func TestExtractKeywordsScoresByInverseFrequency(t *testing.T) {
	// Lower score (1/freq) ranks first: the repeated unigram outranks the
	// singleton one, matching extractKeywords' documented ordering.
	text := "common common common common rare"
	out := extractKeywords(text, 1, 0.9)
	require.Equal(t, []string{"common"}, out)
}
