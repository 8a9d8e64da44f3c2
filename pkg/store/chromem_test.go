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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChromemProviderUpsertAndSearchInMemory(t *testing.T) {
	p, err := NewChromemProvider(ChromemConfig{})
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.Upsert(ctx, "course", "chunk-1", []float32{1, 0, 0}, map[string]any{"content": "golang basics"}))
	require.NoError(t, p.Upsert(ctx, "course", "chunk-2", []float32{0, 1, 0}, map[string]any{"content": "python basics"}))

	results, err := p.Search(ctx, "course", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "chunk-1", results[0].ID)
	require.Equal(t, "golang basics", results[0].Content)
}

func TestChromemProviderDeleteRemovesDocument(t *testing.T) {
	p, err := NewChromemProvider(ChromemConfig{})
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.Upsert(ctx, "course", "chunk-1", []float32{1, 0, 0}, map[string]any{"content": "golang basics"}))
	require.NoError(t, p.Delete(ctx, "course", "chunk-1"))

	results, err := p.Search(ctx, "course", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestChromemProviderPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors")

	p1, err := NewChromemProvider(ChromemConfig{PersistPath: path})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, p1.Upsert(ctx, "course", "chunk-1", []float32{1, 0, 0}, map[string]any{"content": "persisted content"}))
	require.NoError(t, p1.Close())

	p2, err := NewChromemProvider(ChromemConfig{PersistPath: path})
	require.NoError(t, err)
	defer p2.Close()

	results, err := p2.Search(ctx, "course", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "persisted content", results[0].Content)
}

func TestChromemProviderNameAndCreateCollectionNoOp(t *testing.T) {
	p, err := NewChromemProvider(ChromemConfig{})
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, "chromem", p.Name())
	require.NoError(t, p.CreateCollection(context.Background(), "course", 3))
}
