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

// Package config defines the immutable Config value threaded through every
// pipeline stage at construction time. Loading configuration from a file is
// a host-application concern and out of scope here (§1); this package only
// defines the shape, its defaults and its validation.
package config

import (
	"github.com/coursecore/ragcore/pkg/chunker"
	"github.com/coursecore/ragcore/pkg/embedder"
	"github.com/coursecore/ragcore/pkg/enricher"
	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/store"
)

// Config is the immutable root configuration value for the ingestion and
// retrieval core. Every field is YAML-tagged so a host application can
// embed this struct in its own configuration file.
type Config struct {
	Chunker  chunker.Config   `yaml:"chunker"`
	Enricher enricher.Config  `yaml:"enricher"`
	Embedder embedder.Config  `yaml:"embedder"`
	SQLite   store.SQLiteConfig `yaml:"sqlite"`
	Retrieve RetrieveConfig   `yaml:"retrieve"`
	Ingest   IngestConfig     `yaml:"ingest"`
}

// RetrieveConfig holds the retriever's fusion weights, result count and
// query-time dedup/scope-predicate thresholds (§4.6). Package retriever
// reads none of the Scope* fields: InScope always runs a 3-result probe
// against fixed thresholds of 0.3 and 0.5. QueryDedupThreshold is carried
// into retriever.Config.DedupThreshold, which Retrieve does not read (see
// retriever.Config).
type RetrieveConfig struct {
	VectorWeight          float64 `yaml:"vector_weight,omitempty"`
	KeywordWeight         float64 `yaml:"keyword_weight,omitempty"`
	TopK                  int     `yaml:"top_k,omitempty"`
	QueryDedupThreshold   float64 `yaml:"query_dedup_threshold,omitempty"`
	ScopeProbeTopK        int     `yaml:"scope_probe_top_k,omitempty"`
	ScopeThresholdInScope float64 `yaml:"scope_threshold_in_scope,omitempty"`
	ScopeThresholdDefault float64 `yaml:"scope_threshold_default,omitempty"`
}

// DefaultRetrieveConfig returns the spec's §4.6/§4.4 defaults.
func DefaultRetrieveConfig() RetrieveConfig {
	return RetrieveConfig{
		VectorWeight:          0.7,
		KeywordWeight:         0.3,
		TopK:                  10,
		QueryDedupThreshold:   0.85,
		ScopeProbeTopK:        3,
		ScopeThresholdInScope: 0.3,
		ScopeThresholdDefault: 0.5,
	}
}

func (c *RetrieveConfig) SetDefaults() {
	d := DefaultRetrieveConfig()
	if c.VectorWeight == 0 && c.KeywordWeight == 0 {
		c.VectorWeight, c.KeywordWeight = d.VectorWeight, d.KeywordWeight
	}
	if c.TopK == 0 {
		c.TopK = d.TopK
	}
	if c.QueryDedupThreshold == 0 {
		c.QueryDedupThreshold = d.QueryDedupThreshold
	}
	if c.ScopeProbeTopK == 0 {
		c.ScopeProbeTopK = d.ScopeProbeTopK
	}
	if c.ScopeThresholdInScope == 0 {
		c.ScopeThresholdInScope = d.ScopeThresholdInScope
	}
	if c.ScopeThresholdDefault == 0 {
		c.ScopeThresholdDefault = d.ScopeThresholdDefault
	}
}

func (c *RetrieveConfig) Validate() error {
	if c.VectorWeight < 0 || c.VectorWeight > 1 {
		return model.NewConfigError("vector_weight", "must be in [0,1]")
	}
	if c.KeywordWeight < 0 || c.KeywordWeight > 1 {
		return model.NewConfigError("keyword_weight", "must be in [0,1]")
	}
	if c.TopK <= 0 {
		return model.NewConfigError("top_k", "must be positive")
	}
	if c.QueryDedupThreshold < 0 || c.QueryDedupThreshold > 1 {
		return model.NewConfigError("query_dedup_threshold", "must be in [0,1]")
	}
	return nil
}

// IngestConfig configures worker-pool sizing, embedding retries and index
// batch size for ingest jobs (§5).
type IngestConfig struct {
	FileWorkers      int `yaml:"file_workers,omitempty"`
	EnrichWorkers    int `yaml:"enrich_workers,omitempty"`
	EmbedMaxRetries  int `yaml:"embed_max_retries,omitempty"`
	IndexBatchSize   int `yaml:"index_batch_size,omitempty"`
}

func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		FileWorkers:     4,
		EnrichWorkers:   4,
		EmbedMaxRetries: 3,
		IndexBatchSize:  64,
	}
}

func (c *IngestConfig) SetDefaults() {
	d := DefaultIngestConfig()
	if c.FileWorkers == 0 {
		c.FileWorkers = d.FileWorkers
	}
	if c.EnrichWorkers == 0 {
		c.EnrichWorkers = d.EnrichWorkers
	}
	if c.EmbedMaxRetries == 0 {
		c.EmbedMaxRetries = d.EmbedMaxRetries
	}
	if c.IndexBatchSize == 0 {
		c.IndexBatchSize = d.IndexBatchSize
	}
}

func (c *IngestConfig) Validate() error {
	if c.FileWorkers <= 0 {
		return model.NewConfigError("file_workers", "must be positive")
	}
	if c.EnrichWorkers <= 0 {
		return model.NewConfigError("enrich_workers", "must be positive")
	}
	if c.IndexBatchSize <= 0 {
		return model.NewConfigError("index_batch_size", "must be positive")
	}
	return nil
}

// SetDefaults fills every sub-config's zero-valued fields with its spec
// defaults.
func (c *Config) SetDefaults() {
	c.Chunker.SetDefaults()
	c.Enricher.SetDefaults()
	c.Embedder.SetDefaults()
	c.SQLite.SetDefaults()
	c.Retrieve.SetDefaults()
	c.Ingest.SetDefaults()
}

// Validate validates every sub-config, failing fast at construction per §7
// (ConfigError policy).
func (c *Config) Validate() error {
	if err := c.Chunker.Validate(); err != nil {
		return err
	}
	if err := c.Enricher.Validate(); err != nil {
		return err
	}
	if err := c.Embedder.Validate(); err != nil {
		return err
	}
	if err := c.Retrieve.Validate(); err != nil {
		return err
	}
	if err := c.Ingest.Validate(); err != nil {
		return err
	}
	return nil
}

// New builds a Config with defaults applied and validated.
func New() (Config, error) {
	var c Config
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
