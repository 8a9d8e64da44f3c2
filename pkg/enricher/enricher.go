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

// Package enricher attaches keywords, named entities, topic tags and
// inferred document intent to a chunk's text. Every stage is pure and
// idempotent: it reads Chunk.Text and writes only the semantic fields S3
// owns, so re-running enrichment on the same chunk is a no-op.
package enricher

import (
	"github.com/coursecore/ragcore/pkg/model"
)

// Config configures every enrichment stage's tunable knobs.
type Config struct {
	NumKeywords                int                 `yaml:"num_keywords,omitempty"`
	KeywordSimilarityThreshold float64             `yaml:"keyword_similarity_threshold,omitempty"`
	TopicKeywords              map[string][]string `yaml:"topic_keywords,omitempty"`
	TopicThreshold             float64             `yaml:"topic_threshold,omitempty"`
	MaxTopics                  int                 `yaml:"max_topics,omitempty"`
}

// DefaultConfig returns the spec's default enrichment knobs, including the
// default topic→keywords map from §4.3.
func DefaultConfig() Config {
	return Config{
		NumKeywords:                10,
		KeywordSimilarityThreshold: 0.9,
		TopicKeywords:              defaultTopicKeywords(),
		TopicThreshold:             0.01,
		MaxTopics:                  5,
	}
}

// SetDefaults fills zero-valued fields with the spec defaults.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.NumKeywords == 0 {
		c.NumKeywords = d.NumKeywords
	}
	if c.KeywordSimilarityThreshold == 0 {
		c.KeywordSimilarityThreshold = d.KeywordSimilarityThreshold
	}
	if c.TopicKeywords == nil {
		c.TopicKeywords = d.TopicKeywords
	}
	if c.TopicThreshold == 0 {
		c.TopicThreshold = d.TopicThreshold
	}
	if c.MaxTopics == 0 {
		c.MaxTopics = d.MaxTopics
	}
}

// Validate enforces the invariants the enrichment stages depend on.
func (c *Config) Validate() error {
	if c.NumKeywords <= 0 {
		return model.NewConfigError("num_keywords", "must be positive")
	}
	if c.KeywordSimilarityThreshold < 0 || c.KeywordSimilarityThreshold > 1 {
		return model.NewConfigError("keyword_similarity_threshold", "must be in [0,1]")
	}
	if c.TopicThreshold < 0 || c.TopicThreshold > 1 {
		return model.NewConfigError("topic_threshold", "must be in [0,1]")
	}
	if c.MaxTopics <= 0 {
		return model.NewConfigError("max_topics", "must be positive")
	}
	return nil
}

// Enricher runs every S3 stage over a chunk's text and writes the results
// back onto the chunk.
type Enricher struct {
	cfg        Config
	topicIndex *topicIndex
	entities   EntityExtractor
}

// New builds an Enricher, wiring the default EntityExtractor unless the
// caller substitutes one via WithEntityExtractor.
func New(cfg Config, opts ...Option) (*Enricher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Enricher{
		cfg:        cfg,
		topicIndex: newTopicIndex(cfg.TopicKeywords),
		entities:   DefaultEntityExtractor{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Option customizes an Enricher at construction time.
type Option func(*Enricher)

// WithEntityExtractor substitutes the default regex/gazetteer entity
// extractor, per spec §4.3's "may be skipped or substituted".
func WithEntityExtractor(extractor EntityExtractor) Option {
	return func(e *Enricher) {
		if extractor != nil {
			e.entities = extractor
		}
	}
}

// Enrich attaches keywords, entities, topic tags and intent to chunk,
// mutating it in place.
func (e *Enricher) Enrich(chunk *model.Chunk) {
	chunk.Keywords = extractKeywords(chunk.Text, e.cfg.NumKeywords, e.cfg.KeywordSimilarityThreshold)
	chunk.Entities = e.entities.Extract(chunk.Text)
	chunk.TopicTags = e.topicIndex.classify(chunk.Text, e.cfg.TopicThreshold, e.cfg.MaxTopics)
	chunk.DocumentIntent = inferIntent(chunk.Text)
}
