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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursecore/ragcore/pkg/model"
)

func TestRegistryRejectsUnsupportedExtension(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Parse(context.Background(), "/corpus/notes.xlsx")
	require.Error(t, err)
	var unsupported *model.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
}

func TestRegistryPropagatesMissingFileAsParseError(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Parse(context.Background(), "/corpus/does-not-exist.pdf")
	require.Error(t, err)
}

func TestPDFParserCanParseOnlyPDFExtension(t *testing.T) {
	p := NewPDFParser(nil)
	require.True(t, p.CanParse(".pdf"))
	require.False(t, p.CanParse(".docx"))
}

func TestPPTXParserCanParsePptAndPptx(t *testing.T) {
	p := NewPPTXParser()
	require.True(t, p.CanParse(".pptx"))
	require.True(t, p.CanParse(".ppt"))
	require.False(t, p.CanParse(".pdf"))
}

func TestDOCXParserCanParseDocAndDocx(t *testing.T) {
	p := NewDOCXParser()
	require.True(t, p.CanParse(".docx"))
	require.True(t, p.CanParse(".doc"))
	require.False(t, p.CanParse(".pptx"))
}

func TestIsScannedPageJudgesLowDensityTextAsScanned(t *testing.T) {
	require.True(t, isScannedPage("   "))
	require.True(t, isScannedPage("a b"))
	require.False(t, isScannedPage("this page has enough extracted text to not be scanned"))
}
