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

// Package dedup implements the two-stage ingest-time deduplication
// (exact-hash, then MinHash/LSH near-duplicate collapsing) and the lighter
// query-time near-duplicate filter used by the retriever.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/coursecore/ragcore/pkg/model"
)

var nonAlnumSpace = regexp.MustCompile(`[^a-z0-9 ]`)

// NormalizeText applies the canonical normalization used for both the exact
// content hash and MinHash shingling: lowercase, collapse whitespace runs to
// a single space, strip non-alphanumeric-non-space characters, trim.
func NormalizeText(text string) string {
	lower := strings.ToLower(text)
	collapsed := strings.Join(strings.Fields(lower), " ")
	stripped := nonAlnumSpace.ReplaceAllString(collapsed, "")
	return strings.TrimSpace(stripped)
}

// ContentHash computes the SHA-256 hex digest of the normalized text. It is
// deterministic under NormalizeText, satisfying the chunk invariant that
// content_hash is a pure function of the chunk's text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// HashStats summarizes one exact-dedup pass.
type HashStats struct {
	Total      int
	Unique     int
	Duplicates int
	Groups     map[string][]string // canonical chunk id -> suppressed duplicate ids
}

// HashDeduplicator performs Stage A: exact normalized-hash elimination. A
// single instance accumulates seen hashes across ingest batches so a hash
// already written in a prior batch is caught too, given the caller seeds it
// with PreSeed from the store's existing content hashes.
type HashDeduplicator struct {
	seen map[string]string // hash -> representative chunk id
}

func NewHashDeduplicator() *HashDeduplicator {
	return &HashDeduplicator{seen: make(map[string]string)}
}

// PreSeed registers content hashes already present in the index so this
// ingest run treats them as duplicates of an unspecified prior chunk.
func (d *HashDeduplicator) PreSeed(hashes map[string]string) {
	for h, id := range hashes {
		if _, exists := d.seen[h]; !exists {
			d.seen[h] = id
		}
	}
}

// Deduplicate walks chunks in order, setting ContentHash on every chunk and
// CanonicalChunkID on any chunk whose normalized text was already seen
// (in this call or a prior one). The returned slice contains survivors only,
// in their original relative order.
func (d *HashDeduplicator) Deduplicate(chunks []model.Chunk) ([]model.Chunk, HashStats) {
	stats := HashStats{Total: len(chunks), Groups: make(map[string][]string)}
	survivors := make([]model.Chunk, 0, len(chunks))

	for _, c := range chunks {
		hash := ContentHash(c.Text)
		c.ContentHash = hash

		if repID, dup := d.seen[hash]; dup {
			stats.Duplicates++
			c.CanonicalChunkID = repID
			stats.Groups[repID] = append(stats.Groups[repID], c.ChunkID)
			continue
		}

		d.seen[hash] = c.ChunkID
		survivors = append(survivors, c)
	}

	stats.Unique = len(survivors)
	return survivors, stats
}

// SeenHashes exposes the accumulated hash set, e.g. for checkpointing.
func (d *HashDeduplicator) SeenHashes() map[string]string {
	out := make(map[string]string, len(d.seen))
	for k, v := range d.seen {
		out[k] = v
	}
	return out
}
