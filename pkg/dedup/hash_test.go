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

func TestNormalizeTextCollapsesWhitespaceAndPunctuation(t *testing.T) {
	require.Equal(t, "hello world", NormalizeText("  Hello,   WORLD!! "))
}

func TestContentHashIsDeterministicUnderNormalization(t *testing.T) {
	require.Equal(t, ContentHash("Hello, World!"), ContentHash("hello world"))
	require.NotEqual(t, ContentHash("Hello, World!"), ContentHash("Goodbye, World!"))
}

func TestHashDeduplicatorCollapsesExactDuplicates(t *testing.T) {
	d := NewHashDeduplicator()
	chunks := []model.Chunk{
		{ChunkID: "a", Text: "Hello, World!"},
		{ChunkID: "b", Text: "hello world"},
		{ChunkID: "c", Text: "unrelated text"},
	}

	survivors, stats := d.Deduplicate(chunks)
	require.Len(t, survivors, 2)
	require.Equal(t, 1, stats.Duplicates)
	require.Equal(t, 2, stats.Unique)
	require.Equal(t, []string{"b"}, stats.Groups["a"])
}

func TestHashDeduplicatorPreSeedCollapsesAgainstPriorRun(t *testing.T) {
	d := NewHashDeduplicator()
	d.PreSeed(map[string]string{ContentHash("already indexed"): "prior-chunk"})

	survivors, stats := d.Deduplicate([]model.Chunk{{ChunkID: "new", Text: "already indexed"}})
	require.Empty(t, survivors)
	require.Equal(t, 1, stats.Duplicates)
}

func TestHashDeduplicatorSeenHashesReturnsCopy(t *testing.T) {
	d := NewHashDeduplicator()
	d.Deduplicate([]model.Chunk{{ChunkID: "a", Text: "x"}})

	seen := d.SeenHashes()
	seen[ContentHash("y")] = "tampered"

	_, stats := d.Deduplicate([]model.Chunk{{ChunkID: "b", Text: "y"}})
	require.Equal(t, 0, stats.Duplicates) // mutation of the copy must not leak back
}
