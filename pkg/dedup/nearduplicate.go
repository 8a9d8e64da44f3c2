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
	"github.com/coursecore/ragcore/pkg/model"
)

const (
	// defaultNumPerm is the MinHash signature width used at both ingest and
	// query time, matching the LSH band/row split below.
	defaultNumPerm    = 128
	defaultShingle    = 3
	lshBands          = 16
	lshRows           = 8 // bands*rows == defaultNumPerm

	// IngestJaccardThreshold is Stage B's near-duplicate collapse threshold.
	IngestJaccardThreshold = 0.92

	// QueryJaccardThreshold is the lighter query-time near-duplicate filter
	// threshold, deliberately looser than ingest so near-identical passages
	// retrieved from different source documents still collapse at read time.
	QueryJaccardThreshold = 0.85
)

// NearDupStats summarizes one Stage B pass.
type NearDupStats struct {
	Total      int
	Unique     int
	Duplicates int
	Groups     map[string][]string // canonical chunk id -> suppressed duplicate ids
}

// NearDupDeduplicator performs Stage B: MinHash/LSH near-duplicate collapse
// over the survivors of Stage A's exact-hash pass. An instance accumulates
// signatures across batches the same way HashDeduplicator accumulates hashes.
type NearDupDeduplicator struct {
	threshold float64
	index     *LSHIndex
}

// NewNearDupDeduplicator builds a Stage B deduplicator at the ingest
// threshold (0.92 Jaccard).
func NewNearDupDeduplicator() *NearDupDeduplicator {
	return &NearDupDeduplicator{
		threshold: IngestJaccardThreshold,
		index:     NewLSHIndex(lshBands, lshRows),
	}
}

// Deduplicate walks chunks in order, computing and attaching each chunk's
// SemanticFingerprint, and setting CanonicalChunkID on any chunk whose
// MinHash signature is within threshold Jaccard similarity of an
// already-seen chunk (in this call, a prior one, or via PreSeedFingerprint). Survivors
// are returned in their original relative order.
func (d *NearDupDeduplicator) Deduplicate(chunks []model.Chunk) ([]model.Chunk, NearDupStats) {
	stats := NearDupStats{Total: len(chunks), Groups: make(map[string][]string)}
	survivors := make([]model.Chunk, 0, len(chunks))

	for _, c := range chunks {
		mh := ComputeMinHash(c.Text, defaultNumPerm, defaultShingle)
		c.SemanticFingerprint = mh.Fingerprint()

		repID := d.findDuplicate(c.ChunkID, mh)
		if repID != "" {
			stats.Duplicates++
			c.CanonicalChunkID = repID
			stats.Groups[repID] = append(stats.Groups[repID], c.ChunkID)
			continue
		}

		d.index.Insert(c.ChunkID, mh)
		survivors = append(survivors, c)
	}

	stats.Unique = len(survivors)
	return survivors, stats
}

// findDuplicate returns the id of an already-indexed signature whose
// Jaccard similarity to mh meets the threshold, or "" if none does.
func (d *NearDupDeduplicator) findDuplicate(selfID string, mh MinHash) string {
	for _, candidateID := range d.index.Candidates(mh, selfID) {
		candidate, ok := d.index.Signature(candidateID)
		if !ok {
			continue
		}
		if mh.Jaccard(candidate) >= d.threshold {
			return candidateID
		}
	}
	return ""
}

// PreSeedFingerprint registers a fingerprint already present in the index
// (recomputed from stored text) so this ingest run can collapse against it.
// Callers that only persist the compact Fingerprint string cannot rebuild
// the full signature; in that case near-dup collapsing is best-effort and
// limited to chunks produced within the same run.
func (d *NearDupDeduplicator) PreSeedFingerprint(chunkID string, mh MinHash) {
	d.index.Insert(chunkID, mh)
}

// QueryDeduplicate collapses near-duplicate hits from a hybrid search
// result set using the looser query-time threshold. Candidate sets at query
// time are small (a handful times top_k), so this runs a direct pairwise
// comparison rather than building an LSH index.
func QueryDeduplicate(texts []string) []bool {
	keep := make([]bool, len(texts))
	signatures := make([]MinHash, len(texts))
	for i, t := range texts {
		signatures[i] = ComputeMinHash(t, defaultNumPerm, defaultShingle)
		keep[i] = true
	}

	for i := range texts {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(texts); j++ {
			if !keep[j] {
				continue
			}
			if signatures[i].Jaccard(signatures[j]) >= QueryJaccardThreshold {
				keep[j] = false
			}
		}
	}
	return keep
}
