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
	"hash/maphash"
)

// LSHIndex buckets MinHash signatures by band so that near-duplicate
// candidates can be found in sublinear time instead of an all-pairs scan.
// Each signature is split into `bands` contiguous bands of `rows` values;
// two signatures sharing any band's hash collide into the same bucket and
// become candidates for an exact Jaccard check.
type LSHIndex struct {
	bands   int
	rows    int
	buckets []map[uint64][]string // one bucket map per band
	signed  map[string]MinHash
}

// NewLSHIndex builds an index for signatures of exactly bands*rows values.
func NewLSHIndex(bands, rows int) *LSHIndex {
	buckets := make([]map[uint64][]string, bands)
	for i := range buckets {
		buckets[i] = make(map[uint64][]string)
	}
	return &LSHIndex{
		bands:   bands,
		rows:    rows,
		buckets: buckets,
		signed:  make(map[string]MinHash),
	}
}

// Insert registers id's signature into every band bucket it falls into.
func (idx *LSHIndex) Insert(id string, mh MinHash) {
	idx.signed[id] = mh
	for b := 0; b < idx.bands; b++ {
		key := idx.bandKey(mh, b)
		idx.buckets[b][key] = append(idx.buckets[b][key], id)
	}
}

// Candidates returns every previously-inserted id sharing at least one band
// bucket with mh, deduplicated, excluding exact self-matches by id.
func (idx *LSHIndex) Candidates(mh MinHash, excludeID string) []string {
	seen := make(map[string]struct{})
	var out []string
	for b := 0; b < idx.bands; b++ {
		key := idx.bandKey(mh, b)
		for _, id := range idx.buckets[b][key] {
			if id == excludeID {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Signature returns the signature previously inserted under id, if any.
func (idx *LSHIndex) Signature(id string) (MinHash, bool) {
	mh, ok := idx.signed[id]
	return mh, ok
}

// bandKey hashes one band's slice of values into a single bucket key.
func (idx *LSHIndex) bandKey(mh MinHash, band int) uint64 {
	start := band * idx.rows
	end := start + idx.rows
	if end > len(mh.Values) {
		end = len(mh.Values)
	}

	var h maphash.Hash
	h.SetSeed(bandSeed)
	for _, v := range mh.Values[start:end] {
		h.Write(encodeUint64(v))
	}
	return h.Sum64()
}

var bandSeed = maphash.MakeSeed()
