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

package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// cohereEmbedder calls Cohere's /embed endpoint.
type cohereEmbedder struct {
	cfg       Config
	client    *http.Client
	baseURL   string
	model     string
	dimension int
}

type cohereEmbedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model,omitempty"`
	InputType string   `json:"input_type,omitempty"`
}

type cohereEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type cohereErrorResponse struct {
	Message string `json:"message"`
}

func newCohereEmbedder(cfg Config) *cohereEmbedder {
	model := cfg.Model
	if model == "" {
		model = "embed-english-v3.0"
	}
	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = cohereDimension(model)
	}
	baseURL := cfg.Host
	if baseURL == "" {
		baseURL = "https://api.cohere.ai/v1"
	}
	return &cohereEmbedder{
		cfg:       cfg,
		client:    &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		dimension: dimension,
	}
}

func cohereDimension(model string) int {
	switch model {
	case "embed-english-light-v3.0", "embed-multilingual-light-v3.0":
		return 384
	default:
		return 1024
	}
}

func (e *cohereEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncate(text)
	return withRetry(ctx, e.cfg.MaxRetries, func() ([]float32, error) {
		return e.embedOnce(ctx, text)
	})
}

func (e *cohereEmbedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(cohereEmbedRequest{
		Texts:     []string{text},
		Model:     e.model,
		InputType: "search_document",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling cohere request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building cohere request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling cohere: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading cohere response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr cohereErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("cohere API error: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("cohere returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out cohereEmbedResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding cohere response: %w", err)
	}
	if len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("cohere returned an empty embedding")
	}
	return out.Embeddings[0], nil
}

func (e *cohereEmbedder) Dimension() int {
	return e.dimension
}
