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

// Package indexer implements S5: embedding deduplicated chunks and writing
// them to the hybrid store in batches.
package indexer

import (
	"context"
	"log/slog"

	"github.com/coursecore/ragcore/pkg/embedder"
	"github.com/coursecore/ragcore/pkg/metrics"
	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/store"
)

// Stats summarizes one Index call, surfaced through an ingest job's status.
type Stats struct {
	Embedded       int
	EmbedFallback  int // chunks written with a zero vector after exhausting retries
	Indexed        int
	Skipped        int // duplicates (IsDuplicate) never reach the store
}

// Indexer embeds chunk text and writes the result to a HybridStore in
// batches, per spec §4.5.
type Indexer struct {
	embedder  embedder.Embedder
	store     store.HybridStore
	batchSize int
	provider  string
}

// New builds an Indexer. batchSize <= 0 defaults to 64. provider labels the
// embedding_failures_total metric and may be empty.
func New(emb embedder.Embedder, st store.HybridStore, batchSize int, provider string) *Indexer {
	if batchSize <= 0 {
		batchSize = 64
	}
	if provider == "" {
		provider = "unknown"
	}
	return &Indexer{embedder: emb, store: st, batchSize: batchSize, provider: provider}
}

// Index embeds and writes chunks, skipping any already collapsed by S4.
// Cancellation is checked before each chunk is embedded: batches already
// flushed stay committed, and the batch still being accumulated is dropped
// unwritten before ctx.Err() is returned, so a cancelled run never leaves a
// partially-written batch (§5).
func (ix *Indexer) Index(ctx context.Context, chunks []model.Chunk) (Stats, error) {
	var stats Stats
	var batch []store.Document

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ix.store.Upsert(ctx, batch); err != nil {
			return model.NewStoreFailureError("upsert", err)
		}
		metrics.ChunksIndexed.Add(float64(len(batch)))
		stats.Indexed += len(batch)
		batch = batch[:0]
		return nil
	}

	for i := range chunks {
		c := &chunks[i]
		if c.IsDuplicate() {
			stats.Skipped++
			continue
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		vec, err := ix.embedder.Embed(ctx, c.Text)
		if err != nil {
			slog.Warn("embedding failed, indexing with zero vector", "chunk_id", c.ChunkID, "error", err)
			metrics.EmbeddingFailures.WithLabelValues(ix.provider).Inc()
			vec = make([]float32, ix.embedder.Dimension())
			stats.EmbedFallback++
		} else {
			stats.Embedded++
		}
		c.Embedding = vec

		batch = append(batch, toDocument(c))
		if len(batch) >= ix.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

func toDocument(c *model.Chunk) store.Document {
	return store.Document{
		ID:                 c.ChunkID,
		Text:               c.Text,
		Embedding:          c.Embedding,
		WeekNumber:         c.WeekNumber,
		FileType:           string(c.FileType),
		ModuleName:         c.ModuleName,
		ChunkID:            c.ChunkID,
		ContentHash:        c.ContentHash,
		CanonicalChunkID:   c.CanonicalChunkID,
		TopicTags:          c.TopicTags,
		Keywords:           c.Keywords,
		IngestedAt:         c.IngestedAt.Unix(),
		DocumentModifiedAt: c.IngestedAt.Unix(),
	}
}
