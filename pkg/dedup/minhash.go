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
	"encoding/hex"
	"hash/maphash"
)

// no MinHash/SimHash/LSH library appears anywhere in the retrieval pack (see
// SPEC_FULL.md's domain-stack justification), so the algorithm below is
// hand-rolled directly from the spec's parameters: 3-character shingles,
// num_perm permutations, Jaccard-threshold LSH banding.

// Shingles returns the set of 3-character shingles over the normalized text.
// Texts shorter than the shingle size shingle to themselves.
func Shingles(text string, size int) map[string]struct{} {
	norm := NormalizeText(text)
	set := make(map[string]struct{})
	if len(norm) < size {
		if norm != "" {
			set[norm] = struct{}{}
		}
		return set
	}
	for i := 0; i+size <= len(norm); i++ {
		set[norm[i:i+size]] = struct{}{}
	}
	return set
}

// MinHash is a signature of numPerm minimum hash values over a shingle set,
// computed with numPerm independently-seeded 64-bit hash functions.
type MinHash struct {
	Values []uint64
}

var seeds = newSeeds(256) // supports num_perm up to 256 without reseeding

func newSeeds(n int) []maphash.Seed {
	out := make([]maphash.Seed, n)
	for i := range out {
		out[i] = maphash.MakeSeed()
	}
	return out
}

// ComputeMinHash builds a MinHash signature with numPerm permutations over
// text's 3-shingle set.
func ComputeMinHash(text string, numPerm int, shingleSize int) MinHash {
	if numPerm > len(seeds) {
		numPerm = len(seeds)
	}
	shingles := Shingles(text, shingleSize)

	values := make([]uint64, numPerm)
	for i := range values {
		values[i] = ^uint64(0)
	}

	for shingle := range shingles {
		for i := 0; i < numPerm; i++ {
			var h maphash.Hash
			h.SetSeed(seeds[i])
			h.WriteString(shingle)
			v := h.Sum64()
			if v < values[i] {
				values[i] = v
			}
		}
	}

	return MinHash{Values: values}
}

// Jaccard estimates the Jaccard similarity of two signatures as the
// fraction of permutation slots that agree.
func (m MinHash) Jaccard(other MinHash) float64 {
	if len(m.Values) == 0 || len(m.Values) != len(other.Values) {
		return 0
	}
	matches := 0
	for i := range m.Values {
		if m.Values[i] == other.Values[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(m.Values))
}

// Fingerprint returns the hex-encoded first 16 MinHash values, matching
// the chunk's semantic_fingerprint field.
func (m MinHash) Fingerprint() string {
	n := 16
	if n > len(m.Values) {
		n = len(m.Values)
	}
	var out string
	for _, v := range m.Values[:n] {
		out += hex.EncodeToString(encodeUint64(v))
	}
	return out
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
