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

// PageChunker chunks a page-based document. Adjacent pages are merged up to
// TargetTokens before splitting, so a chunk's boundary rarely falls exactly
// on a page break; oversize pages (including merged runs) are split by
// token budget like any other unit.
type PageChunker struct {
	cfg Config
	tok *tokenizer.Counter
}

func (c *PageChunker) Chunk(doc *model.ParsedDocument) ([]model.Chunk, error) {
	groups := groupPages(doc.Pages, c.tok, c.cfg.TargetTokens)

	var out []model.Chunk
	for _, g := range groups {
		text := renderPageGroup(g, c.cfg)
		if strings.TrimSpace(text) == "" {
			continue
		}

		pieces := c.tok.Split(text, c.cfg.MaxTokens, c.cfg.OverlapTokens)
		firstPage := g[0].PageNumber
		method, confidence := extractionSummary(g)

		for i, piece := range pieces {
			page := firstPage
			out = append(out, model.Chunk{
				ChunkID:              uuid.New().String(),
				PageNumber:           &page,
				ContentType:          model.ContentBody,
				PositionInSection:    positionFor(i, len(pieces)),
				ContentHash:          dedup.ContentHash(piece),
				Text:                 piece,
				ExtractionMethod:     method,
				ExtractionConfidence: confidence,
			})
		}
	}
	return out, nil
}

// groupPages merges consecutive pages into runs whose combined token count
// stays at or under targetTokens, so short pages don't each become their
// own undersized chunk.
func groupPages(pages []model.PageUnit, tok *tokenizer.Counter, targetTokens int) [][]model.PageUnit {
	var groups [][]model.PageUnit
	var current []model.PageUnit
	currentTokens := 0

	for _, p := range pages {
		pageTokens := tok.Count(p.Text)
		if len(current) > 0 && currentTokens+pageTokens > targetTokens {
			groups = append(groups, current)
			current = nil
			currentTokens = 0
		}
		current = append(current, p)
		currentTokens += pageTokens
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// renderPageGroup concatenates a run of pages' text and, when enabled,
// their tables, separated by blank lines.
func renderPageGroup(pages []model.PageUnit, cfg Config) string {
	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)

		if cfg.IncludeTables {
			for _, tbl := range p.Tables {
				sb.WriteString("\n[Table]\n")
				for _, row := range tbl {
					sb.WriteString(strings.Join(row, " | "))
					sb.WriteString("\n")
				}
				sb.WriteString("[/Table]")
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// extractionSummary reports "recognition-service" with the lowest observed
// confidence if any page in the group required it, otherwise "native" at
// full confidence.
func extractionSummary(pages []model.PageUnit) (string, float64) {
	method := "native"
	confidence := 1.0
	for _, p := range pages {
		if p.ExtractionMethod == "recognition-service" {
			method = "recognition-service"
			if p.ExtractionConfidence < confidence {
				confidence = p.ExtractionConfidence
			}
		}
	}
	return method, confidence
}
