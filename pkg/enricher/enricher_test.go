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

package enricher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursecore/ragcore/pkg/model"
)

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTopics = -1
	_, err := New(cfg)
	require.Error(t, err)
}

func TestEnrichPopulatesAllFields(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)

	chunk := &model.Chunk{Text: "In this tutorial we walk through gradient descent step by step, covering optimization and convergence."}
	e.Enrich(chunk)

	require.NotEmpty(t, chunk.Keywords)
	require.Equal(t, model.IntentTutorial, chunk.DocumentIntent)
}

func TestEnrichIsIdempotent(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)

	chunk := &model.Chunk{Text: "Our database schema stores records with a flexible data model."}
	e.Enrich(chunk)
	first := chunk.Keywords

	e.Enrich(chunk)
	require.Equal(t, first, chunk.Keywords)
}

type fakeExtractor struct{ calls int }

func (f *fakeExtractor) Extract(string) []model.Entity {
	f.calls++
	return []model.Entity{{Text: "stub", Type: "stub"}}
}

func TestWithEntityExtractorSubstitutesDefault(t *testing.T) {
	fake := &fakeExtractor{}
	e, err := New(DefaultConfig(), WithEntityExtractor(fake))
	require.NoError(t, err)

	chunk := &model.Chunk{Text: "anything"}
	e.Enrich(chunk)

	require.Equal(t, 1, fake.calls)
	require.Equal(t, []model.Entity{{Text: "stub", Type: "stub"}}, chunk.Entities)
}

func TestWithEntityExtractorIgnoresNil(t *testing.T) {
	e, err := New(DefaultConfig(), WithEntityExtractor(nil))
	require.NoError(t, err)
	require.IsType(t, DefaultEntityExtractor{}, e.entities)
}
