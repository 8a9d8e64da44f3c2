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

package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/tokenizer"
)

func newTestPageChunker(t *testing.T, cfg Config) *PageChunker {
	t.Helper()
	tok, err := tokenizer.New()
	require.NoError(t, err)
	cfg.SetDefaults()
	return &PageChunker{cfg: cfg, tok: tok}
}

func TestPageChunkerMergesShortPagesUpToTargetTokens(t *testing.T) {
	c := newTestPageChunker(t, Config{TargetTokens: 1000, MaxTokens: 2000, MinTokens: 10, OverlapTokens: 0})
	doc := &model.ParsedDocument{
		Kind: model.UnitPage,
		Pages: []model.PageUnit{
			{PageNumber: 1, Text: "short page one"},
			{PageNumber: 2, Text: "short page two"},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Text, "short page one")
	require.Contains(t, chunks[0].Text, "short page two")
}

func TestPageChunkerSkipsBlankPages(t *testing.T) {
	c := newTestPageChunker(t, DefaultConfig())
	doc := &model.ParsedDocument{
		Kind: model.UnitPage,
		Pages: []model.PageUnit{
			{PageNumber: 1, Text: "   "},
			{PageNumber: 2, Text: "real content here"},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Text, "real content here")
}

func TestPageChunkerIncludesTablesWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeTables = true
	c := newTestPageChunker(t, cfg)
	doc := &model.ParsedDocument{
		Kind: model.UnitPage,
		Pages: []model.PageUnit{
			{PageNumber: 1, Text: "body text", Tables: []model.Table{{{"a", "b"}, {"1", "2"}}}},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Text, "[Table]")
	require.Contains(t, chunks[0].Text, "a | b")
}

func TestPageChunkerOmitsTablesWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeTables = false
	c := newTestPageChunker(t, cfg)
	doc := &model.ParsedDocument{
		Kind: model.UnitPage,
		Pages: []model.PageUnit{
			{PageNumber: 1, Text: "body text", Tables: []model.Table{{{"a", "b"}}}},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.NotContains(t, chunks[0].Text, "[Table]")
}

func TestPageChunkerReportsRecognitionServiceWithLowestConfidence(t *testing.T) {
	c := newTestPageChunker(t, Config{TargetTokens: 1000, MaxTokens: 2000, MinTokens: 10, OverlapTokens: 0})
	doc := &model.ParsedDocument{
		Kind: model.UnitPage,
		Pages: []model.PageUnit{
			{PageNumber: 1, Text: "scanned page", ExtractionMethod: "recognition-service", ExtractionConfidence: 0.9},
			{PageNumber: 2, Text: "second scanned page", ExtractionMethod: "recognition-service", ExtractionConfidence: 0.4},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "recognition-service", chunks[0].ExtractionMethod)
	require.Equal(t, 0.4, chunks[0].ExtractionConfidence)
}

func TestPageChunkerSplitsOversizePageByTokenBudget(t *testing.T) {
	cfg := Config{TargetTokens: 50, MaxTokens: 50, MinTokens: 10, OverlapTokens: 0}
	c := newTestPageChunker(t, cfg)
	longText := strings.Repeat("word ", 500)
	doc := &model.ParsedDocument{
		Kind:  model.UnitPage,
		Pages: []model.PageUnit{{PageNumber: 1, Text: longText}},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		require.NotNil(t, ch.PageNumber)
		require.Equal(t, 1, *ch.PageNumber)
	}
}
