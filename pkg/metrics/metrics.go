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

// Package metrics exposes Prometheus instrumentation for every ingest
// pipeline stage (parse, chunk, enrich, dedup, index) and for retrieval.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsParsed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragcore",
		Name:      "documents_parsed_total",
		Help:      "Documents successfully parsed, by file type.",
	}, []string{"file_type"})

	ParseErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragcore",
		Name:      "parse_errors_total",
		Help:      "Documents that failed parsing, by file type and error kind.",
	}, []string{"file_type", "error"})

	ChunksProduced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragcore",
		Name:      "chunks_produced_total",
		Help:      "Chunks produced by the chunking stage, by structural unit kind.",
	}, []string{"unit_kind"})

	DedupDuplicates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragcore",
		Name:      "dedup_duplicates_total",
		Help:      "Chunks collapsed as duplicates, by stage (hash or near_dup).",
	}, []string{"stage"})

	ChunksIndexed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ragcore",
		Name:      "chunks_indexed_total",
		Help:      "Chunks successfully written to the hybrid store.",
	})

	EmbeddingFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragcore",
		Name:      "embedding_failures_total",
		Help:      "Embedding calls that exhausted retries, by provider.",
	}, []string{"provider"})

	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ragcore",
		Name:      "stage_duration_seconds",
		Help:      "Wall-clock duration of one pipeline stage invocation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	RetrievalLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ragcore",
		Name:      "retrieval_latency_seconds",
		Help:      "End-to-end latency of a retrieve operation.",
		Buckets:   prometheus.DefBuckets,
	})

	RetrievalResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ragcore",
		Name:      "retrieval_result_count",
		Help:      "Number of hits returned by a retrieve operation.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})
)

func init() {
	prometheus.MustRegister(
		DocumentsParsed,
		ParseErrors,
		ChunksProduced,
		DedupDuplicates,
		ChunksIndexed,
		EmbeddingFailures,
		StageDuration,
		RetrievalLatency,
		RetrievalResults,
	)
}

// Timer records a stage's duration to StageDuration when stopped.
type Timer struct {
	stage string
	start time.Time
}

// StartTimer begins timing stage.
func StartTimer(stage string) *Timer {
	return &Timer{stage: stage, start: time.Now()}
}

// Stop records the elapsed duration under the timer's stage label.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	StageDuration.WithLabelValues(t.stage).Observe(elapsed.Seconds())
	return elapsed
}
