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
	"fmt"
)

// VectorOnlyStore adapts a dense-only Provider (Qdrant, Pinecone or
// chromem-go) into the HybridStore contract the rest of this module
// consumes. This is the same role these providers play in the teacher: an
// interchangeable vector backend selected by config, never fused with a
// lexical leg there either. A genuine lexical+vector fusion in one engine
// (§4.5/§4.6) needs a store that speaks both BM25 and k-NN, which is what
// SQLiteStore is for; VectorOnlyStore exists for hosts that already run one
// of these vector databases and want this module to index into it directly,
// at the cost of the keyword leg (HybridSearch degenerates to a normalized
// dense search) and of ExistingContentHashes/Exists, which need a lexical
// scan these providers don't expose.
type VectorOnlyStore struct {
	provider   Provider
	collection string
	dimension  int
}

// NewVectorOnlyStore builds a HybridStore around a dense-only Provider.
// dimension is the embedding width used to create the backing collection.
func NewVectorOnlyStore(provider Provider, collection string, dimension int) *VectorOnlyStore {
	return &VectorOnlyStore{provider: provider, collection: collection, dimension: dimension}
}

// CreateIndex creates the backing collection, sized for this store's
// embedding dimension.
func (s *VectorOnlyStore) CreateIndex(ctx context.Context) error {
	return s.provider.CreateCollection(ctx, s.collection, s.dimension)
}

// Upsert writes each document's embedding and facet metadata to the
// provider, keyed by chunk ID.
func (s *VectorOnlyStore) Upsert(ctx context.Context, docs []Document) error {
	for _, d := range docs {
		meta := map[string]any{
			"content":              d.Text,
			"chunk_id":             d.ChunkID,
			"file_type":            d.FileType,
			"module_name":          d.ModuleName,
			"content_hash":         d.ContentHash,
			"canonical_chunk_id":   d.CanonicalChunkID,
			"topic_tags":           d.TopicTags,
			"keywords":             d.Keywords,
			"ingested_at":          d.IngestedAt,
			"document_modified_at": d.DocumentModifiedAt,
		}
		if d.WeekNumber != nil {
			meta["week_number"] = *d.WeekNumber
		}
		for k, v := range d.Metadata {
			meta[k] = v
		}

		if err := s.provider.Upsert(ctx, s.collection, d.ID, d.Embedding, meta); err != nil {
			return fmt.Errorf("%s: upsert %s: %w", s.provider.Name(), d.ID, err)
		}
	}
	return nil
}

// DeleteByQuery removes every document matching the facet filter.
func (s *VectorOnlyStore) DeleteByQuery(ctx context.Context, filter Filter) error {
	if err := s.provider.DeleteByFilter(ctx, s.collection, filter.asMap()); err != nil {
		return fmt.Errorf("%s: delete by filter: %w", s.provider.Name(), err)
	}
	return nil
}

// HybridSearch runs the dense leg alone: the query's lexical text is
// ignored, and the vector scores are min-max normalized the same way the
// fused SQLite path normalizes its vector leg (§4.6), so callers see scores
// on the same [0, 1] scale regardless of backend.
func (s *VectorOnlyStore) HybridSearch(ctx context.Context, req SearchRequest) ([]Hit, error) {
	results, err := s.provider.SearchWithFilter(ctx, s.collection, req.QueryVector, req.TopK, req.Filter.asMap())
	if err != nil {
		return nil, fmt.Errorf("%s: search: %w", s.provider.Name(), err)
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = float64(r.Score)
	}
	normalized := normalizeScores(scores)

	hits := make([]Hit, len(results))
	for i, r := range results {
		chunkID, _ := r.Metadata["chunk_id"].(string)
		if chunkID == "" {
			chunkID = r.ID
		}
		hits[i] = Hit{ChunkID: chunkID, Score: normalized[i], Text: r.Content, Metadata: r.Metadata}
	}
	sortHitsByScoreDesc(hits)
	return hits, nil
}

// Exists is not supported: answering it exactly needs a lexical index or a
// point-lookup-by-id call these providers' Provider interface doesn't expose.
func (s *VectorOnlyStore) Exists(ctx context.Context, chunkID string) (bool, error) {
	return false, fmt.Errorf("%s: existence lookup is not supported by the vector-only adapter", s.provider.Name())
}

// ExistingContentHashes returns no pre-seed: a dense-only provider can't
// enumerate indexed content hashes without a full scan API none of these
// providers offer. Ingest falls back to hash-deduplicating within each run.
func (s *VectorOnlyStore) ExistingContentHashes(ctx context.Context) (map[string]string, error) {
	return nil, nil
}

// Close releases the underlying provider's connection.
func (s *VectorOnlyStore) Close() error {
	return s.provider.Close()
}
