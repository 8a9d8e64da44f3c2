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

// Package chunker turns a parsed document into bounded-size chunks with
// provenance metadata, dispatching on structural-unit kind.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/tokenizer"
)

// Config configures every chunker's token-bounded splitting behavior.
type Config struct {
	TargetTokens  int  `yaml:"target_tokens,omitempty"`
	MaxTokens     int  `yaml:"max_tokens,omitempty"`
	MinTokens     int  `yaml:"min_tokens,omitempty"`
	OverlapTokens int  `yaml:"overlap_tokens,omitempty"`

	IncludeSpeakerNotes bool `yaml:"include_speaker_notes"`
	IncludeTables       bool `yaml:"include_tables"`
}

// DefaultConfig returns the spec's default chunking knobs.
func DefaultConfig() Config {
	return Config{
		TargetTokens:        500,
		MaxTokens:           1000,
		MinTokens:           100,
		OverlapTokens:       50,
		IncludeSpeakerNotes: true,
		IncludeTables:       true,
	}
}

// SetDefaults fills zero-valued fields with the spec defaults.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.TargetTokens == 0 {
		c.TargetTokens = d.TargetTokens
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MinTokens == 0 {
		c.MinTokens = d.MinTokens
	}
	if c.OverlapTokens == 0 {
		c.OverlapTokens = d.OverlapTokens
	}
}

// Validate enforces the invariants the token-bounded splitter depends on.
func (c *Config) Validate() error {
	if c.MaxTokens <= 0 {
		return model.NewConfigError("max_tokens", "must be positive")
	}
	if c.MinTokens < 0 || c.MinTokens > c.MaxTokens {
		return model.NewConfigError("min_tokens", "must be between 0 and max_tokens")
	}
	if c.OverlapTokens < 0 || c.OverlapTokens >= c.MaxTokens {
		return model.NewConfigError("overlap_tokens", "must be non-negative and less than max_tokens")
	}
	if c.TargetTokens <= 0 || c.TargetTokens > c.MaxTokens {
		return model.NewConfigError("target_tokens", "must be positive and at most max_tokens")
	}
	return nil
}

// Chunker turns one parsed document into its chunk sequence.
type Chunker interface {
	Chunk(doc *model.ParsedDocument) ([]model.Chunk, error)
}

// Dispatcher routes a ParsedDocument to the chunker registered for its Kind.
type Dispatcher struct {
	cfg     Config
	tok     *tokenizer.Counter
	slide   *SlideChunker
	page    *PageChunker
	section *SectionChunker
}

// New builds a Dispatcher wired to all three per-kind chunkers.
func New(cfg Config, tok *tokenizer.Counter) (*Dispatcher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{
		cfg:     cfg,
		tok:     tok,
		slide:   &SlideChunker{cfg: cfg, tok: tok},
		page:    &PageChunker{cfg: cfg, tok: tok},
		section: &SectionChunker{cfg: cfg, tok: tok},
	}, nil
}

// Chunk dispatches doc to the appropriate per-kind chunker. A document of an
// unknown kind is rejected with a ChunkingError; a document with zero
// structural units produces zero chunks.
func (d *Dispatcher) Chunk(doc *model.ParsedDocument) ([]model.Chunk, error) {
	switch doc.Kind {
	case model.UnitSlide, model.UnitPage, model.UnitSection:
	default:
		return nil, model.NewChunkingError(doc.Metadata.FilePath, "unknown structural unit kind", nil)
	}
	if doc.UnitCount() == 0 {
		return nil, nil
	}

	var chunks []model.Chunk
	var err error

	switch doc.Kind {
	case model.UnitSlide:
		chunks, err = d.slide.Chunk(doc)
	case model.UnitPage:
		chunks, err = d.page.Chunk(doc)
	case model.UnitSection:
		chunks, err = d.section.Chunk(doc)
	default:
		return nil, model.NewChunkingError(doc.Metadata.FilePath, "unknown structural unit kind", nil)
	}
	if err != nil {
		return nil, err
	}

	docID := DocumentID(doc.Metadata.FilePath, doc.Metadata.ModifiedAt)
	for i := range chunks {
		chunks[i].DocumentID = docID
		chunks[i].Filename = doc.Metadata.Filename
		chunks[i].FileType = doc.Metadata.FileType
		chunks[i].ObjectURI = doc.Metadata.ObjectURI
		chunks[i].ModuleName = doc.Metadata.ModuleName
		chunks[i].FolderPath = doc.Metadata.FolderPath
		chunks[i].WeekNumber = doc.Metadata.WeekNumber
		chunks[i].ChunkIndex = i
		chunks[i].CharCount = len(chunks[i].Text)
		chunks[i].TokenCount = d.tok.Count(chunks[i].Text)
	}
	return chunks, nil
}

// DocumentID derives a stable 16-hex-digit digest of a file's identity,
// stable under re-ingest of an identical file at the same modification time.
func DocumentID(filePath string, modifiedAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", filePath, modifiedAt.Unix())))
	return hex.EncodeToString(sum[:])[:16]
}

// positionFor derives PositionInSection from an index within a split
// sequence of length n: {1-of-1 -> only, 0 -> beginning, last -> end, else middle}.
func positionFor(i, n int) model.PositionInSection {
	switch {
	case n == 1:
		return model.PositionOnly
	case i == 0:
		return model.PositionBeginning
	case i == n-1:
		return model.PositionEnd
	default:
		return model.PositionMiddle
	}
}
