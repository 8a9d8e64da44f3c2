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

// Package retriever implements R: hybrid query submission, query-time
// near-duplicate dedup, and the pre-retrieval scope predicate.
package retriever

import (
	"context"
	"strings"
	"time"

	"github.com/coursecore/ragcore/pkg/dedup"
	"github.com/coursecore/ragcore/pkg/embedder"
	"github.com/coursecore/ragcore/pkg/metrics"
	"github.com/coursecore/ragcore/pkg/store"
)

// Filters mirrors the retrieval API's optional facet filters (§6).
type Filters struct {
	WeekNumber *int
	FileType   string
	ModuleName string
}

// Result is one cited retrieval hit.
type Result struct {
	ChunkID  string
	Score    float64
	Text     string
	Metadata map[string]any
}

// Response is the retrieval API's return value (§6).
type Response struct {
	Results     []Result
	QueryTimeMS int64
	TotalHits   int
}

// Config configures fusion weights. DedupThreshold is not read by Retrieve:
// query-time dedup always uses dedup.QueryDeduplicate at the fixed
// dedup.QueryJaccardThreshold (0.85).
type Config struct {
	VectorWeight  float64
	KeywordWeight float64
	DedupThreshold float64
}

// Retriever implements R over a hybrid store.
type Retriever struct {
	embedder embedder.Embedder
	store    store.HybridStore
	cfg      Config
}

// New builds a Retriever.
func New(emb embedder.Embedder, st store.HybridStore, cfg Config) *Retriever {
	return &Retriever{embedder: emb, store: st, cfg: cfg}
}

// Retrieve implements the retrieve(query, filters?, top_k) operation of §6:
// embed, submit a 2×top_k hybrid query, filter, query-time dedup, truncate.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters Filters, topK int) (Response, error) {
	if topK <= 0 {
		topK = 10
	}
	start := time.Now()

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return Response{}, err
	}

	req := store.SearchRequest{
		QueryText:   query,
		QueryVector: vec,
		TopK:        topK * 2, // headroom for query-time dedup, per §4.6 step 4
		Filter: store.Filter{
			WeekNumber: filters.WeekNumber,
			FileType:   filters.FileType,
			ModuleName: filters.ModuleName,
		},
		VectorWeight:  r.cfg.VectorWeight,
		KeywordWeight: r.cfg.KeywordWeight,
	}

	hits, err := r.store.HybridSearch(ctx, req)
	if err != nil {
		return Response{}, err
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	keep := dedup.QueryDeduplicate(texts)

	results := make([]Result, 0, topK)
	for i, h := range hits {
		if !keep[i] {
			continue
		}
		results = append(results, Result{ChunkID: h.ChunkID, Score: h.Score, Text: h.Text, Metadata: h.Metadata})
		if len(results) == topK {
			break
		}
	}

	elapsed := time.Since(start)
	metrics.RetrievalLatency.Observe(elapsed.Seconds())
	metrics.RetrievalResults.Observe(float64(len(results)))

	return Response{
		Results:     results,
		QueryTimeMS: elapsed.Milliseconds(),
		TotalHits:   len(hits),
	}, nil
}

// inScopeIndicators, when present in a raw query, loosen the scope
// predicate's threshold (§4.6 scope check): 0.3 rather than the default 0.5.
var inScopeIndicators = []string{
	"course", "lecture", "week", "assignment", "module", "slide", "reading",
}

// scopeBlocklist short-circuits obviously off-topic queries before paying
// for a probe retrieval.
var scopeBlocklist = []string{
	"weather", "stock price", "sports score", "joke",
}

// InScope implements the scope predicate: a keyword blocklist followed by a
// 3-result semantic probe. On probe failure it is permissive, per §7.
func (r *Retriever) InScope(ctx context.Context, query string) bool {
	lower := strings.ToLower(query)
	for _, blocked := range scopeBlocklist {
		if strings.Contains(lower, blocked) {
			return false
		}
	}

	threshold := 0.5
	for _, indicator := range inScopeIndicators {
		if strings.Contains(lower, indicator) {
			threshold = 0.3
			break
		}
	}

	resp, err := r.Retrieve(ctx, query, Filters{}, 3)
	if err != nil {
		return true // permissive on transient fault, per §7
	}

	var maxScore float64
	for _, res := range resp.Results {
		if res.Score > maxScore {
			maxScore = res.Score
		}
	}
	return maxScore >= threshold
}
