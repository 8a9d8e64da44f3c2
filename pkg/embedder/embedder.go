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

// Package embedder adapts the text-embedding step of the indexing and
// retrieval pipelines to a handful of concrete providers (Ollama, OpenAI,
// Cohere), each speaking its own HTTP API but sharing one retry/backoff
// and truncation policy.
package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursecore/ragcore/pkg/model"
)

// maxEmbedChars truncates text before embedding, per spec §4.5 step 1, so a
// single oversize chunk cannot blow past a provider's input token limit.
const maxEmbedChars = 25000

// Embedder generates a dense vector for one piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Config configures a provider-backed Embedder.
type Config struct {
	Type       string `yaml:"type"` // "ollama", "openai", "cohere"
	Model      string `yaml:"model,omitempty"`
	Host       string `yaml:"host,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	Dimension  int    `yaml:"dimension,omitempty"`
	TimeoutSec int    `yaml:"timeout_seconds,omitempty"`
	MaxRetries int    `yaml:"max_retries,omitempty"`
	BatchSize  int    `yaml:"batch_size,omitempty"`
}

// SetDefaults fills zero-valued fields with provider-appropriate defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 30
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BatchSize == 0 {
		c.BatchSize = 96
	}
}

// Validate enforces the fields every provider needs regardless of type.
func (c *Config) Validate() error {
	switch c.Type {
	case "ollama", "openai", "cohere":
	default:
		return model.NewConfigError("type", "must be one of ollama, openai, cohere")
	}
	if c.Type != "ollama" && c.APIKey == "" {
		return model.NewConfigError("api_key", "required for "+c.Type)
	}
	if c.TimeoutSec <= 0 {
		return model.NewConfigError("timeout_seconds", "must be positive")
	}
	return nil
}

// New builds the Embedder named by cfg.Type.
func New(cfg Config) (Embedder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "ollama":
		return newOllamaEmbedder(cfg), nil
	case "openai":
		return newOpenAIEmbedder(cfg), nil
	case "cohere":
		return newCohereEmbedder(cfg), nil
	default:
		return nil, model.NewConfigError("type", "unsupported embedder type "+cfg.Type)
	}
}

// truncate clips text to maxEmbedChars, matching every provider's input
// limit handling.
func truncate(text string) string {
	if len(text) <= maxEmbedChars {
		return text
	}
	return text[:maxEmbedChars]
}

// withRetry retries fn up to maxRetries times with linear 1-10s backoff,
// matching the indexer's embedding retry policy from spec §4.5/§7.
func withRetry(ctx context.Context, maxRetries int, fn func() ([]float32, error)) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		vec, err := fn()
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if attempt < maxRetries-1 {
			backoff := time.Duration(attempt+1) * time.Second
			if backoff > 10*time.Second {
				backoff = 10 * time.Second
			}
			slog.Debug("embedding retry", "attempt", attempt+1, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxRetries, lastErr)
}
