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

// Package store implements the hybrid (lexical + vector) chunk store:
// the dense k-NN leg (pluggable across Qdrant, Pinecone and chromem-go),
// a BM25-style lexical leg, and the normalization-then-weighted-average
// fusion pipeline the retriever submits queries through.
package store

import (
	"context"
	"sort"
)

// Result is one hit returned by a dense vector search.
type Result struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
	Score    float32
}

// Provider is the dense k-NN leg of the hybrid store: a vector index a
// caller can upsert into and search, independent of any lexical scoring.
// Qdrant, Pinecone and chromem-go each implement this against their own
// wire protocol; VectorOnlyStore adapts one of them to HybridStore without
// a lexical leg.
type Provider interface {
	Name() string
	Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)
	Delete(ctx context.Context, collection string, id string) error
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error
	CreateCollection(ctx context.Context, collection string, vectorDimension int) error
	DeleteCollection(ctx context.Context, collection string) error
	Close() error
}

// NilProvider is a no-op Provider, used when no dense backend is configured.
type NilProvider struct{}

func (NilProvider) Name() string { return "nil" }
func (NilProvider) Upsert(context.Context, string, string, []float32, map[string]any) error {
	return nil
}
func (NilProvider) Search(context.Context, string, []float32, int) ([]Result, error) { return nil, nil }
func (NilProvider) SearchWithFilter(context.Context, string, []float32, int, map[string]any) ([]Result, error) {
	return nil, nil
}
func (NilProvider) Delete(context.Context, string, string) error            { return nil }
func (NilProvider) DeleteByFilter(context.Context, string, map[string]any) error { return nil }
func (NilProvider) CreateCollection(context.Context, string, int) error     { return nil }
func (NilProvider) DeleteCollection(context.Context, string) error         { return nil }
func (NilProvider) Close() error                                           { return nil }

// Document is the unit written to the hybrid store: a chunk's text,
// embedding and the facet fields enumerated in spec §3/§4.5.
type Document struct {
	ID                 string
	Text               string
	Embedding          []float32
	WeekNumber         *int
	FileType           string
	ModuleName         string
	ChunkID            string
	ContentHash        string
	CanonicalChunkID   string
	TopicTags          []string
	Keywords           []string
	IngestedAt         int64 // unix seconds
	DocumentModifiedAt int64 // unix seconds
	Metadata           map[string]any
}

// Filter expresses exact-match facet constraints applied alongside a
// hybrid search, per §4.6 step 3.
type Filter struct {
	WeekNumber *int
	FileType   string
	ModuleName string
}

func (f Filter) asMap() map[string]any {
	m := make(map[string]any)
	if f.WeekNumber != nil {
		m["week_number"] = *f.WeekNumber
	}
	if f.FileType != "" {
		m["file_type"] = f.FileType
	}
	if f.ModuleName != "" {
		m["module_name"] = f.ModuleName
	}
	return m
}

// SearchRequest is a hybrid query: a dense vector clause and a lexical
// clause, fused per §4.6 step 2.
type SearchRequest struct {
	QueryText     string
	QueryVector   []float32
	TopK          int
	Filter        Filter
	VectorWeight  float64
	KeywordWeight float64
}

// Hit is one fused, filtered search result.
type Hit struct {
	ChunkID  string
	Score    float64
	Text     string
	Metadata map[string]any
}

// HybridStore is the hybrid store contract from spec §6: create-index,
// upsert-by-id, delete-by-query, hybrid search, term/range filtering and
// an existence check.
type HybridStore interface {
	CreateIndex(ctx context.Context) error
	Upsert(ctx context.Context, docs []Document) error
	DeleteByQuery(ctx context.Context, filter Filter) error
	HybridSearch(ctx context.Context, req SearchRequest) ([]Hit, error)
	Exists(ctx context.Context, chunkID string) (bool, error)
	ExistingContentHashes(ctx context.Context) (map[string]string, error)
	Close() error
}

// normalizeScores min-max normalizes a slice of scores into [0, 1]. A
// degenerate slice (all-equal, or empty) normalizes to all-zero so it does
// not dominate the weighted average.
func normalizeScores(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max == min {
		return out
	}
	for i, s := range scores {
		out[i] = (s - min) / (max - min)
	}
	return out
}

// fuseScores combines min-max normalized vector and keyword scores for the
// same ordered candidate set with a weighted arithmetic mean, per §4.6.
func fuseScores(vectorScores, keywordScores []float64, vectorWeight, keywordWeight float64) []float64 {
	nv := normalizeScores(vectorScores)
	nk := normalizeScores(keywordScores)
	out := make([]float64, len(vectorScores))
	for i := range out {
		out[i] = vectorWeight*nv[i] + keywordWeight*nk[i]
	}
	return out
}

// sortHitsByScoreDesc sorts hits by fused score, highest first, breaking
// ties by chunk ID for deterministic ordering.
func sortHitsByScoreDesc(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
}
