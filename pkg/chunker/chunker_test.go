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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/tokenizer"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	tok, err := tokenizer.New()
	require.NoError(t, err)
	d, err := New(DefaultConfig(), tok)
	require.NoError(t, err)
	return d
}

func TestConfigValidateRejectsNonPositiveMaxTokens(t *testing.T) {
	c := DefaultConfig()
	c.MaxTokens = 0
	require.Error(t, c.Validate())
}

func TestConfigValidateRejectsOverlapAtOrAboveMax(t *testing.T) {
	c := DefaultConfig()
	c.OverlapTokens = c.MaxTokens
	require.Error(t, c.Validate())
}

func TestConfigValidateRejectsTargetAboveMax(t *testing.T) {
	c := DefaultConfig()
	c.TargetTokens = c.MaxTokens + 1
	require.Error(t, c.Validate())
}

func TestChunkEmptyDocumentProducesNoChunks(t *testing.T) {
	d := newTestDispatcher(t)
	doc := &model.ParsedDocument{Kind: model.UnitPage}
	chunks, err := d.Chunk(doc)
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestChunkRejectsUnknownUnitKind(t *testing.T) {
	d := newTestDispatcher(t)
	doc := &model.ParsedDocument{
		Kind:  model.StructuralUnitKind("mystery"),
		Pages: []model.PageUnit{{PageNumber: 1, Text: "hello"}},
	}
	_, err := d.Chunk(doc)
	require.Error(t, err)
}

func TestChunkStampsProvenanceFromMetadata(t *testing.T) {
	d := newTestDispatcher(t)
	week := 3
	doc := &model.ParsedDocument{
		Kind: model.UnitPage,
		Metadata: model.DocumentMetadata{
			FilePath:   "/course/week3/slides.pdf",
			FileType:   model.DocumentType("pdf"),
			Filename:   "slides.pdf",
			ObjectURI:  "s3://bucket/slides.pdf",
			ModuleName: "Intro to Go",
			FolderPath: "week3",
			WeekNumber: &week,
			ModifiedAt: time.Unix(1700000000, 0),
		},
		Pages: []model.PageUnit{{PageNumber: 1, Text: "hello world"}},
	}
	chunks, err := d.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	c := chunks[0]
	require.Equal(t, "slides.pdf", c.Filename)
	require.Equal(t, model.DocumentType("pdf"), c.FileType)
	require.Equal(t, "s3://bucket/slides.pdf", c.ObjectURI)
	require.Equal(t, "Intro to Go", c.ModuleName)
	require.Equal(t, "week3", c.FolderPath)
	require.Equal(t, &week, c.WeekNumber)
	require.Equal(t, 0, c.ChunkIndex)
	require.Equal(t, DocumentID("/course/week3/slides.pdf", doc.Metadata.ModifiedAt), c.DocumentID)
	require.Positive(t, c.TokenCount)
	require.Equal(t, len(c.Text), c.CharCount)
}

func TestDocumentIDIsStableForIdenticalInputs(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	require.Equal(t, DocumentID("a/b.pdf", ts), DocumentID("a/b.pdf", ts))
}

func TestDocumentIDDiffersWhenModificationTimeDiffers(t *testing.T) {
	require.NotEqual(t,
		DocumentID("a/b.pdf", time.Unix(1, 0)),
		DocumentID("a/b.pdf", time.Unix(2, 0)))
}

func TestPositionForSingleUnit(t *testing.T) {
	require.Equal(t, model.PositionOnly, positionFor(0, 1))
}

func TestPositionForBeginningMiddleEnd(t *testing.T) {
	require.Equal(t, model.PositionBeginning, positionFor(0, 3))
	require.Equal(t, model.PositionMiddle, positionFor(1, 3))
	require.Equal(t, model.PositionEnd, positionFor(2, 3))
}
