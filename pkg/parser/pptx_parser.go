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
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coursecore/ragcore/pkg/model"
)

// PPTXParser emits one structural unit per slide. PPTX is a zip of OOXML
// parts, so this is built directly on archive/zip + encoding/xml rather than
// a third-party library — no slide-deck parsing package exists in the
// ecosystem the way one does for PDF or DOCX.
//
// ".ppt" (the legacy binary format) routes through this same parser: it is
// not a zip container, so zip.OpenReader fails and the file surfaces as a
// recorded ParseError rather than crashing the batch.
type PPTXParser struct{}

func NewPPTXParser() *PPTXParser { return &PPTXParser{} }

func (p *PPTXParser) CanParse(ext string) bool {
	return ext == ".pptx" || ext == ".ppt"
}

func (p *PPTXParser) Parse(ctx context.Context, filePath string) (*model.ParsedDocument, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, model.NewParseError(filePath, "stat", err)
	}

	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, model.NewParseError(filePath, "zip-open", err)
	}
	defer r.Close()

	fileIndex := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileIndex[f.Name] = f
	}

	slideFiles := make(map[int]*zip.File)
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			if num := extractPPTXIndex(f.Name, "ppt/slides/slide"); num > 0 {
				slideFiles[num] = f
			}
		}
	}

	nums := make([]int, 0, len(slideFiles))
	for n := range slideFiles {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	doc := &model.ParsedDocument{
		Kind: model.UnitSlide,
		Metadata: model.DocumentMetadata{
			FilePath:      filePath,
			FileType:      model.DocumentPPTX,
			Filename:      filepath.Base(filePath),
			FileSizeBytes: info.Size(),
			ModifiedAt:    info.ModTime(),
		},
	}

	for _, num := range nums {
		select {
		case <-ctx.Done():
			return nil, &model.CancelledError{Operation: "pptx parse", Err: ctx.Err()}
		default:
		}

		data, err := readZipFile(slideFiles[num])
		if err != nil {
			doc.Metadata.Errors = append(doc.Metadata.Errors,
				model.NewParseError(filePath, fmt.Sprintf("slide-%d", num), err).Error())
			continue
		}

		title, body, tables := extractSlideTxBody(data)
		notes := extractNotesForSlide(fileIndex, num)

		doc.Slides = append(doc.Slides, model.SlideUnit{
			SlideNumber:  num,
			Title:        title,
			Body:         body,
			SpeakerNotes: notes,
			Tables:       tables,
		})
	}

	doc.Metadata.TotalUnits = len(doc.Slides)
	doc.Metadata.ExtractionMethod = "native"
	return doc, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func extractPPTXIndex(name, prefix string) int {
	name = strings.TrimPrefix(name, prefix)
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
}

// pptx slide XML, simplified to the elements this parser needs.
type pptxSlide struct {
	CSld struct {
		SpTree struct {
			SPs []pptxSP  `xml:"sp"`
			Tbl []pptxTbl `xml:"graphicFrame>graphic>graphicData>tbl"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type pptxSP struct {
	NvSpPr struct {
		CNvPr struct {
			Name string `xml:"name,attr"`
		} `xml:"cNvPr"`
		NvPr struct {
			PH struct {
				Type string `xml:"type,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody *pptxTxBody `xml:"txBody"`
}

type pptxTxBody struct {
	Paras []pptxPara `xml:"p"`
}

type pptxPara struct {
	PPr struct {
		Lvl int `xml:"lvl,attr"`
	} `xml:"pPr"`
	Runs []pptxRun `xml:"r"`
}

type pptxRun struct {
	Text string `xml:"t"`
}

type pptxTbl struct {
	Rows []struct {
		Cells []struct {
			TxBody pptxTxBody `xml:"txBody"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func extractSlideTxBody(data []byte) (title string, body []model.TextBlock, tables []model.Table) {
	var slide pptxSlide
	if err := xml.Unmarshal(data, &slide); err != nil {
		return "", nil, nil
	}

	for _, sp := range slide.CSld.SpTree.SPs {
		if sp.TxBody == nil {
			continue
		}
		isTitlePlaceholder := strings.Contains(strings.ToLower(sp.NvSpPr.NvPr.PH.Type), "title") ||
			strings.Contains(strings.ToLower(sp.NvSpPr.CNvPr.Name), "title")

		for _, para := range sp.TxBody.Paras {
			text := paraText(para)
			if text == "" {
				continue
			}
			if title == "" && isTitlePlaceholder {
				title = text
				continue
			}
			body = append(body, model.TextBlock{
				Text:  text,
				Level: para.PPr.Lvl,
				Type:  model.BlockListItem,
			})
		}
	}

	for _, tbl := range slide.CSld.SpTree.Tbl {
		var rows model.Table
		for _, r := range tbl.Rows {
			var cells []string
			for _, c := range r.Cells {
				cells = append(cells, paraText(firstPara(c.TxBody)))
			}
			rows = append(rows, cells)
		}
		if len(rows) > 0 {
			tables = append(tables, rows)
		}
	}

	return title, body, tables
}

func firstPara(body pptxTxBody) pptxPara {
	if len(body.Paras) == 0 {
		return pptxPara{}
	}
	return body.Paras[0]
}

func paraText(p pptxPara) string {
	var sb strings.Builder
	for _, run := range p.Runs {
		sb.WriteString(run.Text)
	}
	return strings.TrimSpace(sb.String())
}

// notesSlide XML shares the same txBody shape as the main slide.
type pptxNotesSlide struct {
	CSld struct {
		SpTree struct {
			SPs []pptxSP `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

func extractNotesForSlide(fileIndex map[string]*zip.File, slideNum int) string {
	name := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", slideNum)
	f, ok := fileIndex[name]
	if !ok {
		return ""
	}
	data, err := readZipFile(f)
	if err != nil {
		return ""
	}

	var notes pptxNotesSlide
	if err := xml.Unmarshal(data, &notes); err != nil {
		return ""
	}

	var parts []string
	for _, sp := range notes.CSld.SpTree.SPs {
		if sp.TxBody == nil {
			continue
		}
		// The slide-number placeholder shape is skipped; only the body
		// notes placeholder carries free text.
		if sp.NvSpPr.NvPr.PH.Type == "sldNum" {
			continue
		}
		for _, para := range sp.TxBody.Paras {
			if t := paraText(para); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n")
}
