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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointSeenAndMark(t *testing.T) {
	c := NewCheckpoint()
	require.False(t, c.Seen("a.pdf", 100))

	c.Mark("a.pdf", 100)
	require.True(t, c.Seen("a.pdf", 100))
	require.False(t, c.Seen("a.pdf", 101))
}

func TestCheckpointSnapshotRestore(t *testing.T) {
	c := NewCheckpoint()
	c.Mark("a.pdf", 100)
	c.Mark("b.pptx", 200)

	snap := c.Snapshot()
	require.Equal(t, map[string]int64{"a.pdf": 100, "b.pptx": 200}, snap)

	c2 := NewCheckpoint()
	c2.Restore(snap)
	require.True(t, c2.Seen("a.pdf", 100))
	require.True(t, c2.Seen("b.pptx", 200))
}
