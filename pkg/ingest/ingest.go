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

// Package ingest orchestrates S1→S5 per discovered file with bounded
// inter-file and intra-file concurrency, checkpointing progress so a
// cancelled or crashed job resumes without re-embedding already-indexed
// chunks.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coursecore/ragcore/pkg/chunker"
	"github.com/coursecore/ragcore/pkg/dedup"
	"github.com/coursecore/ragcore/pkg/enricher"
	"github.com/coursecore/ragcore/pkg/indexer"
	"github.com/coursecore/ragcore/pkg/metrics"
	"github.com/coursecore/ragcore/pkg/model"
	"github.com/coursecore/ragcore/pkg/parser"
)

// Ingester wires S1-S5 together and drives one ingest run. A single
// instance owns its exact-hash and near-dup deduplicators for the lifetime
// of the run, per §5's single-owner shared-state rule.
type Ingester struct {
	parser   *parser.Registry
	chunker  *chunker.Dispatcher
	enricher *enricher.Enricher
	indexer  *indexer.Indexer

	fileWorkers     int
	enrichWorkers   int
	embedMaxRetries int

	checkpoint *Checkpoint
	registry   *Registry

	dedupMu   sync.Mutex
	hashDedup *dedup.HashDeduplicator
	nearDedup *dedup.NearDupDeduplicator
}

// New builds an Ingester. Callers provide the pre-seeded content-hash set
// (from store.ExistingContentHashes) so exact-dedup spans prior ingest runs.
func New(
	p *parser.Registry,
	c *chunker.Dispatcher,
	e *enricher.Enricher,
	ix *indexer.Indexer,
	fileWorkers, enrichWorkers int,
	existingHashes map[string]string,
) *Ingester {
	return NewWithRetries(p, c, e, ix, fileWorkers, enrichWorkers, 3, existingHashes)
}

// NewWithRetries builds an Ingester with an explicit embed/index retry
// budget (§5's IngestConfig.EmbedMaxRetries), used when a caller wants
// cancellation-aware backoff around the S5 write rather than the default of
// three attempts.
func NewWithRetries(
	p *parser.Registry,
	c *chunker.Dispatcher,
	e *enricher.Enricher,
	ix *indexer.Indexer,
	fileWorkers, enrichWorkers, embedMaxRetries int,
	existingHashes map[string]string,
) *Ingester {
	if fileWorkers <= 0 {
		fileWorkers = 4
	}
	if enrichWorkers <= 0 {
		enrichWorkers = 4
	}
	if embedMaxRetries <= 0 {
		embedMaxRetries = 3
	}
	hashDedup := dedup.NewHashDeduplicator()
	hashDedup.PreSeed(existingHashes)

	return &Ingester{
		parser:          p,
		chunker:         c,
		enricher:        e,
		indexer:         ix,
		fileWorkers:     fileWorkers,
		enrichWorkers:   enrichWorkers,
		embedMaxRetries: embedMaxRetries,
		checkpoint:      NewCheckpoint(),
		registry:        NewRegistry(),
		hashDedup:       hashDedup,
		nearDedup:       dedup.NewNearDupDeduplicator(),
	}
}

// Checkpoint exposes the run's checkpoint manager so a host application can
// snapshot/restore it across process restarts.
func (in *Ingester) Checkpoint() *Checkpoint { return in.checkpoint }

// Ingest implements ingest(source_prefix, week?, force_reprocess) from §6:
// discover files under sourcePrefix, start a background job processing
// them with bounded inter-file parallelism, and return its id immediately.
func (in *Ingester) Ingest(ctx context.Context, sourcePrefix string, week *int, forceReprocess bool) (JobStatus, error) {
	files, err := Discover(sourcePrefix)
	if err != nil {
		return JobStatus{}, fmt.Errorf("discover %s: %w", sourcePrefix, err)
	}

	j := newJob(uuid.NewString(), len(files))
	in.registry.put(j)

	go in.run(ctx, j, files, week, forceReprocess)

	return j.snapshot(), nil
}

// Status implements status(job_id) from §6.
func (in *Ingester) Status(jobID string) (JobStatus, bool) {
	return in.registry.Status(jobID)
}

func (in *Ingester) run(ctx context.Context, j *job, files []string, week *int, forceReprocess bool) {
	j.setRunning()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.fileWorkers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			in.processFile(gctx, j, path, week, forceReprocess)
			return gctx.Err()
		})
	}

	state := JobCompleted
	if err := g.Wait(); err != nil {
		state = JobCancelled
		slog.Warn("ingest job ended early", "job_id", j.status.JobID, "error", err)
	}
	j.finish(state)
}

// processFile runs S1-S5 for one file. Per-file errors are recorded on the
// job and never abort the run, matching §7's "local recovery is the
// default" policy.
func (in *Ingester) processFile(ctx context.Context, j *job, path string, week *int, forceReprocess bool) {
	parseTimer := metrics.StartTimer("parse")
	doc, err := in.parser.Parse(ctx, path)
	parseTimer.Stop()
	fileType := string(model.DocumentTypeFromExtension(filepath.Ext(path)))
	if err != nil {
		metrics.ParseErrors.WithLabelValues(fileType, "parse").Inc()
		j.recordFile(0, 1, 0, []string{err.Error()})
		return
	}
	metrics.DocumentsParsed.WithLabelValues(string(doc.Metadata.FileType)).Inc()

	if week != nil && (doc.Metadata.WeekNumber == nil || *doc.Metadata.WeekNumber != *week) {
		j.recordFile(0, 1, 0, nil)
		return
	}

	modifiedAt := doc.Metadata.ModifiedAt.Unix()
	if !forceReprocess && in.checkpoint.Seen(path, modifiedAt) {
		j.recordFile(0, 1, 0, nil)
		return
	}

	chunkTimer := metrics.StartTimer("chunk")
	chunks, err := in.chunker.Chunk(doc)
	chunkTimer.Stop()
	if err != nil {
		j.recordFile(0, 1, 0, []string{err.Error()})
		return
	}
	if len(chunks) == 0 {
		in.checkpoint.Mark(path, modifiedAt)
		j.recordFile(0, 0, 0, nil)
		return
	}
	metrics.ChunksProduced.WithLabelValues(string(doc.Kind)).Add(float64(len(chunks)))

	enrichTimer := metrics.StartTimer("enrich")
	err = in.enrichAll(ctx, chunks)
	enrichTimer.Stop()
	if err != nil {
		j.recordFile(0, 1, 0, []string{err.Error()})
		return
	}

	dedupTimer := metrics.StartTimer("dedup")
	survivors, duplicates := in.deduplicate(chunks)
	dedupTimer.Stop()

	now := time.Now()
	for i := range survivors {
		survivors[i].IngestedAt = now
	}

	indexTimer := metrics.StartTimer("index")
	var stats indexer.Stats
	err = withBackoff(ctx, in.embedMaxRetries, 10*time.Second, func() error {
		var indexErr error
		stats, indexErr = in.indexer.Index(ctx, survivors)
		return indexErr
	})
	indexTimer.Stop()
	if err != nil {
		j.recordFile(stats.Indexed, 0, duplicates, []string{err.Error()})
		return
	}

	in.checkpoint.Mark(path, modifiedAt)
	j.recordFile(stats.Indexed, 0, duplicates, nil)
}

// enrichAll runs S3 over chunks with fixed-size intra-file parallelism
// (default 4), per §5.
func (in *Ingester) enrichAll(ctx context.Context, chunks []model.Chunk) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(in.enrichWorkers)

	for i := range chunks {
		i := i
		g.Go(func() error {
			in.enricher.Enrich(&chunks[i])
			return nil
		})
	}
	return g.Wait()
}

// deduplicate runs Stage A then Stage B in order, serialized by dedupMu
// since both deduplicators carry mutable state shared across concurrent
// file workers (§5).
func (in *Ingester) deduplicate(chunks []model.Chunk) ([]model.Chunk, int) {
	in.dedupMu.Lock()
	defer in.dedupMu.Unlock()

	afterHash, hashStats := in.hashDedup.Deduplicate(chunks)
	survivors, nearStats := in.nearDedup.Deduplicate(afterHash)

	if hashStats.Duplicates > 0 {
		metrics.DedupDuplicates.WithLabelValues("hash").Add(float64(hashStats.Duplicates))
	}
	if nearStats.Duplicates > 0 {
		metrics.DedupDuplicates.WithLabelValues("near_dup").Add(float64(nearStats.Duplicates))
	}

	return survivors, hashStats.Duplicates + nearStats.Duplicates
}
