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

package dedup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursecore/ragcore/pkg/model"
)

func TestNearDupDeduplicatorCollapsesNearIdenticalChunks(t *testing.T) {
	d := NewNearDupDeduplicator()
	chunks := []model.Chunk{
		{ChunkID: "a", Text: "machine learning models are trained on labeled examples to make predictions"},
		{ChunkID: "b", Text: "machine learning models are trained on labeled examples to make predictions."},
		{ChunkID: "c", Text: "the weather forecast calls for rain tomorrow afternoon across the region"},
	}

	survivors, stats := d.Deduplicate(chunks)
	require.Len(t, survivors, 2)
	require.Equal(t, 1, stats.Duplicates)
}

func TestNearDupDeduplicatorPreSeedFingerprintCollapsesAcrossRuns(t *testing.T) {
	d := NewNearDupDeduplicator()
	prior := ComputeMinHash("deep neural networks stack many layers of nonlinear transformations", defaultNumPerm, defaultShingle)
	d.PreSeedFingerprint("prior-chunk", prior)

	survivors, stats := d.Deduplicate([]model.Chunk{
		{ChunkID: "new", Text: "deep neural networks stack many layers of nonlinear transformations"},
	})
	require.Empty(t, survivors)
	require.Equal(t, 1, stats.Duplicates)
}

func TestQueryDeduplicateKeepsDistinctTexts(t *testing.T) {
	texts := []string{
		"gradient descent minimizes a loss function iteratively",
		"overfitting happens when a model memorizes training data",
	}
	keep := QueryDeduplicate(texts)
	require.Equal(t, []bool{true, true}, keep)
}

func TestQueryDeduplicateCollapsesNearDuplicateHits(t *testing.T) {
	texts := []string{
		"gradient descent minimizes a loss function iteratively over many steps",
		"gradient descent minimizes a loss function iteratively over many steps!",
	}
	keep := QueryDeduplicate(texts)
	require.True(t, keep[0])
	require.False(t, keep[1])
}
