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

	"github.com/google/uuid"

	"github.com/coursecore/ragcore/pkg/dedup"
	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/tokenizer"
)

// SectionChunker emits one chunk per heading-delimited section by default,
// splitting only when a section's rendered text exceeds MaxTokens. Every
// split piece carries the section's full heading hierarchy so retrieval can
// still cite the enclosing structure.
type SectionChunker struct {
	cfg Config
	tok *tokenizer.Counter
}

func (c *SectionChunker) Chunk(doc *model.ParsedDocument) ([]model.Chunk, error) {
	hierarchy := make([]string, 0, 4)

	var out []model.Chunk
	for _, section := range doc.Sections {
		hierarchy = pushHeading(hierarchy, section.HeadingLevel, section.Heading)

		if len(section.Content) == 0 && (len(section.Tables) == 0 || !c.cfg.IncludeTables) {
			continue
		}

		text := renderSection(section, c.cfg)
		if strings.TrimSpace(text) == "" {
			continue
		}

		pieces := c.tok.Split(text, c.cfg.MaxTokens, c.cfg.OverlapTokens)
		heading := append([]string(nil), hierarchy...)

		for i, piece := range pieces {
			out = append(out, model.Chunk{
				ChunkID:           uuid.New().String(),
				SectionTitle:      section.Heading,
				HeadingHierarchy:  heading,
				ContentType:       model.ContentBody,
				PositionInSection: positionFor(i, len(pieces)),
				ContentHash:       dedup.ContentHash(piece),
				Text:              piece,
			})
		}
	}
	return out, nil
}

// pushHeading maintains a running heading stack: a new heading at level L
// replaces anything at or below L, then is appended.
func pushHeading(stack []string, level int, heading string) []string {
	if heading == "" {
		return stack
	}
	if level < 1 {
		level = 1
	}
	if level > len(stack) {
		level = len(stack) + 1
	}
	stack = append(stack[:level-1], heading)
	return stack
}

// renderSection assembles a section's text from its content blocks and,
// when enabled, its tables.
func renderSection(section model.SectionUnit, cfg Config) string {
	var sb strings.Builder

	if section.Heading != "" {
		sb.WriteString(strings.Repeat("#", max(section.HeadingLevel, 1)))
		sb.WriteString(" ")
		sb.WriteString(section.Heading)
		sb.WriteString("\n")
	}

	for _, b := range section.Content {
		if b.Type == model.BlockListItem {
			sb.WriteString(strings.Repeat("  ", b.Level))
			sb.WriteString("- ")
		}
		sb.WriteString(b.Text)
		sb.WriteString("\n")
	}

	if cfg.IncludeTables {
		for _, tbl := range section.Tables {
			sb.WriteString("[Table]\n")
			for _, row := range tbl {
				sb.WriteString(strings.Join(row, " | "))
				sb.WriteString("\n")
			}
			sb.WriteString("[/Table]\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
