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

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFtsQueryQuotesEachTokenAndJoinsWithOr(t *testing.T) {
	require.Equal(t, `"hello" OR "world"`, ftsQuery("hello world"))
}

func TestFtsQueryEscapesEmbeddedQuotes(t *testing.T) {
	require.Equal(t, `"say ""hi"""`, ftsQuery(`say "hi"`))
}

func TestFilterClauseEmptyFilterProducesNoWhere(t *testing.T) {
	where, args := filterClause(Filter{})
	require.Empty(t, where)
	require.Empty(t, args)
}

func TestFilterClauseCombinesSetFieldsWithAnd(t *testing.T) {
	week := 2
	where, args := filterClause(Filter{WeekNumber: &week, FileType: "pdf"})
	require.Equal(t, "c.week_number = ? AND c.file_type = ?", where)
	require.Equal(t, []any{2, "pdf"}, args)
}

func TestSerializeFloat32RoundTripsLength(t *testing.T) {
	v := []float32{1, 2, 3}
	buf := serializeFloat32(v)
	require.Len(t, buf, len(v)*4)
}

func TestFuseLegsMergesDisjointAndOverlappingCandidates(t *testing.T) {
	vector := []legHit{
		{chunkID: "a", text: "doc a", score: 1.0},
		{chunkID: "b", text: "doc b", score: 0.5},
	}
	keyword := []legHit{
		{chunkID: "b", text: "doc b", score: 1.0},
		{chunkID: "c", text: "doc c", score: 0.2},
	}
	hits := fuseLegs(vector, keyword, 0.5, 0.5)
	require.Len(t, hits, 3)

	ids := make(map[string]Hit)
	for _, h := range hits {
		ids[h.ChunkID] = h
	}
	require.Contains(t, ids, "a")
	require.Contains(t, ids, "b")
	require.Contains(t, ids, "c")
	// b appears in both legs with the top score on each, so it should fuse
	// to the highest combined score.
	require.Equal(t, "b", hits[0].ChunkID)
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ragcore.db")
	s, err := OpenSQLiteStore(SQLiteConfig{Path: path, VectorDimension: 4})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreUpsertExistsAndHashesRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "chunk-1", Text: "the quick brown fox", Embedding: []float32{0.1, 0.2, 0.3, 0.4}, ContentHash: "hash-1"},
		{ID: "chunk-2", Text: "a lazy dog sleeps", Embedding: []float32{0.4, 0.3, 0.2, 0.1}, ContentHash: "hash-2"},
	}
	require.NoError(t, s.Upsert(ctx, docs))

	exists, err := s.Exists(ctx, "chunk-1")
	require.NoError(t, err)
	require.True(t, exists)

	missing, err := s.Exists(ctx, "chunk-missing")
	require.NoError(t, err)
	require.False(t, missing)

	hashes, err := s.ExistingContentHashes(ctx)
	require.NoError(t, err)
	require.Equal(t, "chunk-1", hashes["hash-1"])
	require.Equal(t, "chunk-2", hashes["hash-2"])
}

func TestSQLiteStoreUpsertIsIdempotentByChunkID(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	doc := Document{ID: "chunk-1", Text: "original text", Embedding: []float32{0.1, 0.1, 0.1, 0.1}}
	require.NoError(t, s.Upsert(ctx, []Document{doc}))

	doc.Text = "updated text"
	require.NoError(t, s.Upsert(ctx, []Document{doc}))

	hits, err := s.HybridSearch(ctx, SearchRequest{
		QueryText: "updated", TopK: 5, VectorWeight: 0, KeywordWeight: 1,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "updated text", hits[0].Text)
}

func TestSQLiteStoreDeleteByQueryRequiresNonEmptyFilter(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.Error(t, s.DeleteByQuery(context.Background(), Filter{}))
}

func TestSQLiteStoreDeleteByQueryRemovesMatchingChunks(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []Document{
		{ID: "chunk-1", Text: "week two content", FileType: "pdf", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
		{ID: "chunk-2", Text: "week three content", FileType: "pptx", Embedding: []float32{0.2, 0.2, 0.2, 0.2}},
	}))

	require.NoError(t, s.DeleteByQuery(ctx, Filter{FileType: "pdf"}))

	exists, err := s.Exists(ctx, "chunk-1")
	require.NoError(t, err)
	require.False(t, exists)

	still, err := s.Exists(ctx, "chunk-2")
	require.NoError(t, err)
	require.True(t, still)
}

func TestSQLiteStoreHybridSearchFusesVectorAndKeywordLegs(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []Document{
		{ID: "chunk-1", Text: "golang concurrency patterns", Embedding: []float32{1, 0, 0, 0}},
		{ID: "chunk-2", Text: "python data science basics", Embedding: []float32{0, 1, 0, 0}},
	}))

	hits, err := s.HybridSearch(ctx, SearchRequest{
		QueryText:     "golang",
		QueryVector:   []float32{1, 0, 0, 0},
		TopK:          5,
		VectorWeight:  0.5,
		KeywordWeight: 0.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, "chunk-1", hits[0].ChunkID)
}
