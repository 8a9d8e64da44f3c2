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

// Package model defines the shared record types that flow through the
// parsing, chunking, enrichment, deduplication, indexing and retrieval
// stages of the ingestion pipeline.
package model

import "time"

// DocumentType is a tagged classification of a source file, derived from
// its extension. Unknown is rejected at the parsing stage.
type DocumentType string

const (
	DocumentPDF     DocumentType = "pdf"
	DocumentPPTX    DocumentType = "pptx"
	DocumentDOCX    DocumentType = "docx"
	DocumentUnknown DocumentType = "unknown"
)

// DocumentTypeFromExtension maps a file extension (with or without the
// leading dot) to a DocumentType. ".ppt" is treated as PPTX's legacy sibling
// and ".doc" as DOCX's; both route through the same parser, which may still
// fail to extract the legacy binary format.
func DocumentTypeFromExtension(ext string) DocumentType {
	switch normalizeExt(ext) {
	case "pdf":
		return DocumentPDF
	case "pptx", "ppt":
		return DocumentPPTX
	case "docx", "doc":
		return DocumentDOCX
	default:
		return DocumentUnknown
	}
}

func normalizeExt(ext string) string {
	out := make([]byte, 0, len(ext))
	for _, r := range ext {
		if r == '.' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, byte(r))
	}
	return string(out)
}

// BlockType classifies a TextBlock's role within a structural unit.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockListItem  BlockType = "list_item"
	BlockTableCell BlockType = "table_cell"
)

// TextBlock is a single run of text with its formatting context, as found
// inside a page, slide or section.
type TextBlock struct {
	Text      string
	Level     int // indentation / nesting depth
	FontSize  float64
	Bold      bool
	IsHeading bool
	Type      BlockType
}

// Table is a rectangular matrix of cell strings.
type Table [][]string

// PageUnit is one page of a page-based document.
type PageUnit struct {
	PageNumber        int
	Text              string
	Blocks            []TextBlock
	Tables            []Table
	ExtractionMethod  string // "native" or "recognition-service"
	ExtractionConfidence float64
}

// SlideUnit is one slide of a slide-based document.
type SlideUnit struct {
	SlideNumber  int
	Title        string
	Body         []TextBlock
	SpeakerNotes string
	Tables       []Table
}

// FullText concatenates the slide's visible text, mirroring the layout used
// when the chunker later renders it.
func (s SlideUnit) FullText() string {
	out := s.Title
	for _, b := range s.Body {
		if b.Text != "" {
			if out != "" {
				out += "\n"
			}
			out += b.Text
		}
	}
	return out
}

// SectionUnit is one heading-delimited section of a section-based document.
type SectionUnit struct {
	Heading      string
	HeadingLevel int
	Content      []TextBlock
	Tables       []Table
	Hyperlinks   []string
}

// StructuralUnitKind tags which of ParsedDocument's Pages, Slides or
// Sections slices is populated.
type StructuralUnitKind string

const (
	UnitPage    StructuralUnitKind = "page"
	UnitSlide   StructuralUnitKind = "slide"
	UnitSection StructuralUnitKind = "section"
)

// DocumentMetadata carries the file-level and path-derived metadata
// attached to a ParsedDocument before content parsing begins.
type DocumentMetadata struct {
	FilePath string
	FileType DocumentType
	Filename string
	ObjectURI string

	ModuleName string
	FolderPath string
	WeekNumber *int

	FileSizeBytes int64
	CreatedAt     time.Time
	ModifiedAt    time.Time

	TotalUnits       int
	IsScanned        bool
	ExtractionMethod string

	Errors []string
}

// ParsedDocument is the format-neutral output of the parsing stage. Exactly
// one of Pages, Slides or Sections is populated, matching FileType.
type ParsedDocument struct {
	Metadata DocumentMetadata
	Kind     StructuralUnitKind
	Pages    []PageUnit
	Slides   []SlideUnit
	Sections []SectionUnit
}

// UnitCount returns the number of structural units regardless of kind.
func (d *ParsedDocument) UnitCount() int {
	switch d.Kind {
	case UnitPage:
		return len(d.Pages)
	case UnitSlide:
		return len(d.Slides)
	case UnitSection:
		return len(d.Sections)
	default:
		return 0
	}
}

// IsSuccessful reports whether the document has usable content and no
// recorded processing errors.
func (d *ParsedDocument) IsSuccessful() bool {
	return d.UnitCount() > 0 && len(d.Metadata.Errors) == 0
}
