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

// Package tokenizer wraps the cl100k_base BPE encoding and provides the
// token-bounded text splitter shared by every chunker.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the single BPE encoding used across all chunkers, fixed to
// cl100k_base to match the embedding model family in common deployment.
const Encoding = "cl100k_base"

// Counter counts and splits text by cl100k_base tokens. It is safe for
// concurrent use; the underlying tiktoken encoder is read-only once built.
type Counter struct {
	enc *tiktoken.Tiktoken
	mu  sync.RWMutex
}

var (
	shared   *Counter
	sharedMu sync.Mutex
)

// New builds a Counter. Construction is cheap after the first call in a
// process, since tiktoken-go caches its BPE ranks internally.
func New() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", Encoding, err)
	}
	return &Counter{enc: enc}, nil
}

// Shared returns a process-wide Counter, building it on first use. Chunkers
// that don't receive one explicitly may fall back to this.
func Shared() (*Counter, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		return shared, nil
	}
	c, err := New()
	if err != nil {
		return nil, err
	}
	shared = c
	return shared, nil
}

// Count returns the exact cl100k_base token length of text.
func (c *Counter) Count(text string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.enc.Encode(text, nil, nil))
}

// EstimateTokens is a cheap chars/4 approximation for pre-checks where an
// exact count isn't worth the encode pass.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Split walks text in token space and emits substrings bounded by maxTokens,
// advancing by stride = maxTokens - overlapTokens between windows. The final
// window may be shorter than minTokens; it is still emitted rather than
// merged, since overlap is an upper bound and not a floor (see the ingest
// spec's open question on tail handling).
func (c *Counter) Split(text string, maxTokens, overlapTokens int) []string {
	c.mu.RLock()
	tokens := c.enc.Encode(text, nil, nil)
	c.mu.RUnlock()

	if len(tokens) <= maxTokens {
		if len(tokens) == 0 {
			return nil
		}
		return []string{text}
	}

	stride := maxTokens - overlapTokens
	if stride <= 0 {
		stride = maxTokens
	}

	var out []string
	for start := 0; start < len(tokens); start += stride {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		c.mu.RLock()
		decoded := c.enc.Decode(tokens[start:end])
		c.mu.RUnlock()
		out = append(out, decoded)
		if end == len(tokens) {
			break
		}
	}
	return out
}
