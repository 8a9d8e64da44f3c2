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
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/coursecore/ragcore/pkg/dedup"
	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/tokenizer"
)

// SlideChunker emits one chunk per slide by default, splitting by token
// budget only when a slide's rendered text exceeds MaxTokens.
type SlideChunker struct {
	cfg Config
	tok *tokenizer.Counter
}

func (c *SlideChunker) Chunk(doc *model.ParsedDocument) ([]model.Chunk, error) {
	var out []model.Chunk

	for _, slide := range doc.Slides {
		text := renderSlide(slide, c.cfg)
		if strings.TrimSpace(text) == "" {
			continue
		}

		slideNum := slide.SlideNumber
		pieces := c.tok.Split(text, c.cfg.MaxTokens, c.cfg.OverlapTokens)

		for i, piece := range pieces {
			out = append(out, model.Chunk{
				ChunkID:           uuid.New().String(),
				SlideNumber:       &slideNum,
				ContentType:       model.ContentSlide,
				PositionInSection: positionFor(i, len(pieces)),
				ContentHash:       dedup.ContentHash(piece),
				Text:              piece,
			})
		}
	}
	return out, nil
}

// renderSlide assembles a slide's text per the spec's layout: title, then
// indented body blocks (two spaces per level, bullet prefix for list
// items), then fenced tables, then an optional speaker-notes suffix.
func renderSlide(slide model.SlideUnit, cfg Config) string {
	var sb strings.Builder

	if slide.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(slide.Title)
		sb.WriteString("\n")
	}

	for _, b := range slide.Body {
		sb.WriteString(strings.Repeat("  ", b.Level))
		if b.Type == model.BlockListItem {
			sb.WriteString("- ")
		}
		sb.WriteString(b.Text)
		sb.WriteString("\n")
	}

	if cfg.IncludeTables {
		for _, tbl := range slide.Tables {
			sb.WriteString("[Table]\n")
			for _, row := range tbl {
				sb.WriteString(strings.Join(row, " | "))
				sb.WriteString("\n")
			}
			sb.WriteString("[/Table]\n")
		}
	}

	if cfg.IncludeSpeakerNotes && strings.TrimSpace(slide.SpeakerNotes) != "" {
		sb.WriteString(fmt.Sprintf("[Speaker Notes: %s]\n", slide.SpeakerNotes))
	}

	return strings.TrimRight(sb.String(), "\n")
}
