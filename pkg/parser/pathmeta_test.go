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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursecore/ragcore/pkg/model"
)

func TestApplyPathMetadataExtractsWeekNumberAndModuleName(t *testing.T) {
	doc := &model.ParsedDocument{}
	ApplyPathMetadata(doc, "/corpus/Week 3/slides.pptx")
	require.NotNil(t, doc.Metadata.WeekNumber)
	require.Equal(t, 3, *doc.Metadata.WeekNumber)
	require.Equal(t, "Week 3", doc.Metadata.ModuleName)
}

func TestApplyPathMetadataFallsBackToFirstNonSkipComponent(t *testing.T) {
	doc := &model.ParsedDocument{}
	ApplyPathMetadata(doc, "/corpus/Intro to Go/documents/slides.pptx")
	require.Nil(t, doc.Metadata.WeekNumber)
	require.Equal(t, "Intro to Go", doc.Metadata.ModuleName)
}

func TestApplyPathMetadataSkipsRootComponent(t *testing.T) {
	doc := &model.ParsedDocument{}
	ApplyPathMetadata(doc, "/corpus/data/notes.docx")
	require.Equal(t, "", doc.Metadata.ModuleName)
}

func TestApplyPathMetadataSetsFolderPath(t *testing.T) {
	doc := &model.ParsedDocument{}
	ApplyPathMetadata(doc, "/corpus/week1/readme.pdf")
	require.Equal(t, "/corpus/week1", doc.Metadata.FolderPath)
}

func TestApplyPathMetadataWeekMatchIsCaseInsensitive(t *testing.T) {
	doc := &model.ParsedDocument{}
	ApplyPathMetadata(doc, "/corpus/WEEK12/notes.pdf")
	require.NotNil(t, doc.Metadata.WeekNumber)
	require.Equal(t, 12, *doc.Metadata.WeekNumber)
}
