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

package parser

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/coursecore/ragcore/pkg/model"
)

// DOCXParser walks a Word document and opens a new section at each detected
// heading, collecting the following text blocks until the next one.
//
// nguyenthenguyen/docx exposes only flattened paragraph text (no style
// run metadata), so heading detection here is a heuristic over paragraph
// shape rather than an actual style-name lookup: a short paragraph with no
// terminal punctuation, immediately followed by body text, is treated as a
// heading. This is a best-effort approximation of §4.1's "heading of any
// level" requirement given the library's surface.
type DOCXParser struct{}

func NewDOCXParser() *DOCXParser { return &DOCXParser{} }

func (p *DOCXParser) CanParse(ext string) bool {
	return ext == ".docx" || ext == ".doc"
}

var headingLike = regexp.MustCompile(`^[A-Z0-9][^.!?]{0,79}$`)

func (p *DOCXParser) Parse(ctx context.Context, filePath string) (*model.ParsedDocument, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, model.NewParseError(filePath, "stat", err)
	}

	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, model.NewParseError(filePath, "docx-open", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()

	doc := &model.ParsedDocument{
		Kind: model.UnitSection,
		Metadata: model.DocumentMetadata{
			FilePath:      filePath,
			FileType:      model.DocumentDOCX,
			Filename:      filepath.Base(filePath),
			FileSizeBytes: info.Size(),
			ModifiedAt:    info.ModTime(),
		},
	}

	paragraphs := splitParagraphs(content)
	doc.Sections = groupIntoSections(paragraphs)
	doc.Metadata.TotalUnits = len(doc.Sections)
	doc.Metadata.ExtractionMethod = "native"

	select {
	case <-ctx.Done():
		return nil, &model.CancelledError{Operation: "docx parse", Err: ctx.Err()}
	default:
	}

	return doc, nil
}

func splitParagraphs(content string) []string {
	raw := strings.Split(content, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		for _, line := range strings.Split(p, "\n") {
			if t := strings.TrimSpace(line); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func groupIntoSections(paragraphs []string) []model.SectionUnit {
	var sections []model.SectionUnit
	current := model.SectionUnit{Heading: "", HeadingLevel: 0}
	hasCurrent := false

	flush := func() {
		if hasCurrent && (current.Heading != "" || len(current.Content) > 0) {
			sections = append(sections, current)
		}
	}

	for i, para := range paragraphs {
		if isHeading(para, i, paragraphs) {
			flush()
			current = model.SectionUnit{Heading: para, HeadingLevel: 1}
			hasCurrent = true
			continue
		}
		if !hasCurrent {
			current = model.SectionUnit{}
			hasCurrent = true
		}
		current.Content = append(current.Content, model.TextBlock{Text: para, Type: model.BlockParagraph})
	}
	flush()
	return sections
}

func isHeading(para string, idx int, all []string) bool {
	if len(para) > 80 || len(para) == 0 {
		return false
	}
	if !headingLike.MatchString(para) {
		return false
	}
	// A heading is followed by body text, not immediately by EOF or
	// another heading-shaped line on its own.
	return idx+1 < len(all) && !headingLike.MatchString(all[idx+1])
}
