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

func newTestSectionChunker(t *testing.T, cfg Config) *SectionChunker {
	t.Helper()
	tok, err := tokenizer.New()
	require.NoError(t, err)
	cfg.SetDefaults()
	return &SectionChunker{cfg: cfg, tok: tok}
}

func TestSectionChunkerEmitsOneChunkPerSection(t *testing.T) {
	c := newTestSectionChunker(t, DefaultConfig())
	doc := &model.ParsedDocument{
		Kind: model.UnitSection,
		Sections: []model.SectionUnit{
			{Heading: "Intro", HeadingLevel: 1, Content: []model.TextBlock{{Text: "welcome", Type: model.BlockParagraph}}},
			{Heading: "Details", HeadingLevel: 1, Content: []model.TextBlock{{Text: "more info", Type: model.BlockParagraph}}},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	require.Equal(t, "Intro", chunks[0].SectionTitle)
	require.Equal(t, "Details", chunks[1].SectionTitle)
}

func TestSectionChunkerTracksHeadingHierarchy(t *testing.T) {
	c := newTestSectionChunker(t, DefaultConfig())
	doc := &model.ParsedDocument{
		Kind: model.UnitSection,
		Sections: []model.SectionUnit{
			{Heading: "Chapter 1", HeadingLevel: 1, Content: []model.TextBlock{{Text: "a", Type: model.BlockParagraph}}},
			{Heading: "Section 1.1", HeadingLevel: 2, Content: []model.TextBlock{{Text: "b", Type: model.BlockParagraph}}},
			{Heading: "Chapter 2", HeadingLevel: 1, Content: []model.TextBlock{{Text: "c", Type: model.BlockParagraph}}},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	require.Equal(t, []string{"Chapter 1"}, chunks[0].HeadingHierarchy)
	require.Equal(t, []string{"Chapter 1", "Section 1.1"}, chunks[1].HeadingHierarchy)
	require.Equal(t, []string{"Chapter 2"}, chunks[2].HeadingHierarchy)
}

func TestSectionChunkerSkipsEmptySections(t *testing.T) {
	c := newTestSectionChunker(t, DefaultConfig())
	doc := &model.ParsedDocument{
		Kind: model.UnitSection,
		Sections: []model.SectionUnit{
			{Heading: "Empty", HeadingLevel: 1},
			{Heading: "Filled", HeadingLevel: 1, Content: []model.TextBlock{{Text: "content", Type: model.BlockParagraph}}},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "Filled", chunks[0].SectionTitle)
}

func TestSectionChunkerRendersListItemsWithIndentation(t *testing.T) {
	c := newTestSectionChunker(t, DefaultConfig())
	doc := &model.ParsedDocument{
		Kind: model.UnitSection,
		Sections: []model.SectionUnit{
			{Heading: "List", HeadingLevel: 1, Content: []model.TextBlock{
				{Text: "first", Type: model.BlockListItem, Level: 0},
				{Text: "nested", Type: model.BlockListItem, Level: 1},
			}},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Contains(t, chunks[0].Text, "- first")
	require.Contains(t, chunks[0].Text, "  - nested")
}

func TestSectionChunkerSplitsOversizeSectionByTokenBudget(t *testing.T) {
	cfg := Config{TargetTokens: 50, MaxTokens: 50, MinTokens: 10, OverlapTokens: 0}
	c := newTestSectionChunker(t, cfg)
	longText := strings.Repeat("word ", 500)
	doc := &model.ParsedDocument{
		Kind: model.UnitSection,
		Sections: []model.SectionUnit{
			{Heading: "Big", HeadingLevel: 1, Content: []model.TextBlock{{Text: longText, Type: model.BlockParagraph}}},
		},
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		require.Equal(t, "Big", ch.SectionTitle)
	}
}
