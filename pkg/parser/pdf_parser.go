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
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/coursecore/ragcore/pkg/model"
)

// scannedTextDensityThreshold is the minimum number of characters a page's
// extracted text must have, after trimming surrounding whitespace; a page
// with fewer is judged scanned (image-only) rather than natively
// text-bearing.
const scannedTextDensityThreshold = 8

// PDFParser extracts page-based structural units from PDF files using
// native text extraction, deferring low-density pages to a RecognitionService
// when one is configured.
type PDFParser struct {
	recognition RecognitionService
}

func NewPDFParser(recognition RecognitionService) *PDFParser {
	return &PDFParser{recognition: recognition}
}

func (p *PDFParser) CanParse(ext string) bool {
	return ext == ".pdf"
}

func (p *PDFParser) Parse(ctx context.Context, filePath string) (*model.ParsedDocument, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, model.NewParseError(filePath, "stat", err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, model.NewParseError(filePath, "open", err)
	}
	defer f.Close()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, model.NewParseError(filePath, "pdf-reader", err)
	}

	doc := &model.ParsedDocument{
		Kind: model.UnitPage,
		Metadata: model.DocumentMetadata{
			FilePath:      filePath,
			FileType:      model.DocumentPDF,
			Filename:      filepath.Base(filePath),
			FileSizeBytes: info.Size(),
			ModifiedAt:    info.ModTime(),
		},
	}

	totalPages := reader.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, &model.CancelledError{Operation: "pdf parse", Err: ctx.Err()}
		default:
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			doc.Metadata.Errors = append(doc.Metadata.Errors,
				model.NewParseError(filePath, "page-text", err).Error())
			continue
		}

		unit := model.PageUnit{
			PageNumber:           pageNum,
			Text:                 text,
			ExtractionMethod:     "native",
			ExtractionConfidence: 1.0,
		}

		if isScannedPage(text) {
			unit.ExtractionMethod = "recognition-service"
			doc.Metadata.IsScanned = true
			if p.recognition != nil {
				recognized, confidence, rErr := p.recognition.Recognize(ctx, nil)
				if rErr != nil {
					doc.Metadata.Errors = append(doc.Metadata.Errors,
						(&model.RecognitionFailureError{FilePath: filePath, Page: pageNum, Err: rErr}).Error())
					unit.ExtractionConfidence = 0
				} else {
					unit.Text = recognized
					unit.ExtractionConfidence = confidence
				}
			} else {
				unit.ExtractionConfidence = 0
			}
		}

		for _, line := range strings.Split(unit.Text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			unit.Blocks = append(unit.Blocks, model.TextBlock{Text: line, Type: model.BlockParagraph})
		}

		doc.Pages = append(doc.Pages, unit)
	}

	doc.Metadata.TotalUnits = len(doc.Pages)
	if doc.Metadata.IsScanned {
		doc.Metadata.ExtractionMethod = "recognition-service"
	} else {
		doc.Metadata.ExtractionMethod = "native"
	}
	return doc, nil
}

// isScannedPage judges a page image-only (scanned) when its trimmed
// extracted text is shorter than scannedTextDensityThreshold characters.
func isScannedPage(text string) bool {
	trimmed := strings.TrimSpace(text)
	return len(trimmed) < scannedTextDensityThreshold
}
