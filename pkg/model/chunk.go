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

package model

import "time"

// PositionInSection classifies a chunk's place within the run of chunks
// split out of a single structural unit.
type PositionInSection string

const (
	PositionOnly      PositionInSection = "only"
	PositionBeginning PositionInSection = "beginning"
	PositionMiddle    PositionInSection = "middle"
	PositionEnd       PositionInSection = "end"
)

// ContentType classifies the semantic role of a chunk's source material.
type ContentType string

const (
	ContentTitle ContentType = "title"
	ContentBody  ContentType = "body"
	ContentTable ContentType = "table"
	ContentList  ContentType = "list"
	ContentNote  ContentType = "note"
	ContentSlide ContentType = "slide"
)

// DocumentIntent is the inferred purpose of the document a chunk came from.
type DocumentIntent string

const (
	IntentOverview DocumentIntent = "overview"
	IntentTutorial DocumentIntent = "tutorial"
	IntentReference DocumentIntent = "reference"
	IntentUnknown  DocumentIntent = "unknown"
)

// Entity is a named entity found in a chunk's text.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Chunk is the unit of indexing and retrieval: a bounded piece of text
// together with the full provenance needed to cite it.
type Chunk struct {
	ChunkID    string
	DocumentID string

	// Provenance
	Filename   string
	FileType   DocumentType
	ObjectURI  string
	ModuleName string
	FolderPath string
	WeekNumber *int

	// Position
	PageNumber        *int
	SlideNumber       *int
	SectionTitle      string
	HeadingHierarchy  []string
	ChunkIndex        int
	PositionInSection PositionInSection
	ContentType       ContentType

	// Semantic (stage S3)
	Keywords       []string
	Entities       []Entity
	TopicTags      []string
	DocumentIntent DocumentIntent

	// Dedup (stage S4)
	ContentHash         string
	SemanticFingerprint string
	CanonicalChunkID    string // empty on the representative

	// Technical
	CharCount             int
	TokenCount            int
	ExtractionMethod      string
	ExtractionConfidence  float64
	IngestedAt            time.Time

	// Payload
	Text      string
	Embedding []float32
}

// IsDuplicate reports whether this chunk was collapsed into another
// canonical chunk and should not be written to the store.
func (c *Chunk) IsDuplicate() bool {
	return c.CanonicalChunkID != ""
}
