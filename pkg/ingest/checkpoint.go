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

package ingest

import "sync"

// Checkpoint records, per source file path, the modification time (unix
// seconds) it was last successfully indexed at. A crashed or cancelled
// ingest run resumes by skipping any file whose current modification time
// matches its checkpointed value, so already-embedded chunks are never
// re-embedded (§3's re-ingest idempotence, §5's cancellation guarantee).
type Checkpoint struct {
	mu        sync.RWMutex
	processed map[string]int64
}

// NewCheckpoint builds an empty checkpoint.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{processed: make(map[string]int64)}
}

// Seen reports whether filePath was already indexed at modifiedAt.
func (c *Checkpoint) Seen(filePath string, modifiedAt int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	last, ok := c.processed[filePath]
	return ok && last == modifiedAt
}

// Mark records filePath as indexed at modifiedAt.
func (c *Checkpoint) Mark(filePath string, modifiedAt int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed[filePath] = modifiedAt
}

// Snapshot returns a copy of the checkpoint's current state, suitable for
// persisting to a host application's own storage between runs.
func (c *Checkpoint) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.processed))
	for k, v := range c.processed {
		out[k] = v
	}
	return out
}

// Restore seeds the checkpoint from a previously captured Snapshot.
func (c *Checkpoint) Restore(state map[string]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range state {
		c.processed[k] = v
	}
}
