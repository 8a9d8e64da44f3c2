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

// Package parser reads heterogeneous course-material source files and
// produces format-neutral model.ParsedDocument values.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/coursecore/ragcore/pkg/model"
)

// RecognitionService is the external OCR collaborator the page-based parser
// defers to when a page is judged scanned. It is specified only at its
// interface; no implementation ships with this module.
type RecognitionService interface {
	Recognize(ctx context.Context, image []byte) (text string, confidence float64, err error)
}

// Parser parses one document variant into its structural units.
type Parser interface {
	// CanParse reports whether this parser handles the given file extension.
	CanParse(ext string) bool

	// Parse reads filePath and returns a populated ParsedDocument. Fatal I/O
	// failures (file absent/unreadable) are returned as errors; recoverable
	// per-unit failures are instead recorded on ParsedDocument.Metadata.Errors.
	Parse(ctx context.Context, filePath string) (*model.ParsedDocument, error)
}

// Registry dispatches to the parser registered for a file's extension.
type Registry struct {
	parsers []Parser
}

// NewRegistry builds a Registry with the three native parsers wired in.
func NewRegistry(recognition RecognitionService) *Registry {
	return &Registry{
		parsers: []Parser{
			NewPDFParser(recognition),
			NewPPTXParser(),
			NewDOCXParser(),
		},
	}
}

// Parse finds a parser for filePath's extension and runs it, attaching
// path-derived metadata before returning. Unknown extensions are rejected
// with model.UnsupportedTypeError.
func (r *Registry) Parse(ctx context.Context, filePath string) (*model.ParsedDocument, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, p := range r.parsers {
		if p.CanParse(ext) {
			doc, err := p.Parse(ctx, filePath)
			if err != nil {
				return nil, err
			}
			ApplyPathMetadata(doc, filePath)
			return doc, nil
		}
	}
	return nil, &model.UnsupportedTypeError{FilePath: filePath, Ext: ext}
}
