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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaultsAndValidates(t *testing.T) {
	// embedder.Type has no default (the provider can't be guessed), so a
	// caller must set it before New() can validate cleanly.
	c := Config{}
	c.Embedder.Type = "ollama"
	c.SetDefaults()
	require.NoError(t, c.Validate())
	require.Equal(t, DefaultRetrieveConfig(), c.Retrieve)
	require.Equal(t, DefaultIngestConfig(), c.Ingest)
}

func TestNewFailsFastWithoutEmbedderType(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "type")
}

func TestRetrieveConfigSetDefaultsLeavesExplicitValuesAlone(t *testing.T) {
	c := RetrieveConfig{TopK: 25}
	c.SetDefaults()
	require.Equal(t, 25, c.TopK)
	require.Equal(t, 0.7, c.VectorWeight)
}

func TestRetrieveConfigValidateRejectsOutOfRangeWeight(t *testing.T) {
	c := RetrieveConfig{VectorWeight: 1.5, KeywordWeight: 0.3, TopK: 10, QueryDedupThreshold: 0.85}
	err := c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "vector_weight")
}

func TestRetrieveConfigValidateRejectsNonPositiveTopK(t *testing.T) {
	c := DefaultRetrieveConfig()
	c.TopK = 0
	require.Error(t, c.Validate())
}

func TestIngestConfigValidateRejectsNonPositiveWorkers(t *testing.T) {
	c := DefaultIngestConfig()
	c.FileWorkers = 0
	require.Error(t, c.Validate())
}

func TestConfigValidateShortCircuitsOnFirstError(t *testing.T) {
	var c Config
	c.Embedder.Type = "ollama"
	c.SetDefaults()
	c.Retrieve.TopK = -1

	err := c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "top_k")
}
