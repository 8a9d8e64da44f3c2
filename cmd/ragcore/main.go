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

// Command ragcore is a thin CLI wrapping the ingest and retrieval
// operations in an outer entrypoint, the way a host application would call
// this module in practice.
//
// Usage:
//
//	ragcore ingest ./materials --db ragcore.db
//	ragcore status <job-id> --db ragcore.db
//	ragcore retrieve "supervised learning" --db ragcore.db
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/coursecore/ragcore/pkg/chunker"
	"github.com/coursecore/ragcore/pkg/config"
	"github.com/coursecore/ragcore/pkg/embedder"
	"github.com/coursecore/ragcore/pkg/enricher"
	"github.com/coursecore/ragcore/pkg/indexer"
	"github.com/coursecore/ragcore/pkg/ingest"
	"github.com/coursecore/ragcore/pkg/parser"
	"github.com/coursecore/ragcore/pkg/retriever"
	"github.com/coursecore/ragcore/pkg/store"
	"github.com/coursecore/ragcore/pkg/tokenizer"
)

// CLI defines the command-line interface.
type CLI struct {
	DB      string `help:"Path to the SQLite hybrid store." default:"ragcore.db"`
	Backend string `help:"Store backend: sqlite (default, BM25+vector fused), qdrant, pinecone, or chromem (vector-only)." default:"sqlite" enum:"sqlite,qdrant,pinecone,chromem"`

	Collection    string `help:"Collection/index name for a vector-only backend." default:"ragcore"`
	VectorDim     int    `help:"Embedding dimension for a vector-only backend." default:"1536"`
	QdrantHost    string `help:"Qdrant host, for --backend=qdrant." default:"localhost"`
	QdrantPort    int    `help:"Qdrant gRPC port, for --backend=qdrant." default:"6334"`
	PineconeKey   string `help:"Pinecone API key, for --backend=pinecone."`
	PineconeHost  string `help:"Pinecone API host, for --backend=pinecone."`
	ChromemPath   string `help:"File path for chromem-go persistence, for --backend=chromem (empty: in-memory only)."`

	Ingest   IngestCmd   `cmd:"" help:"Ingest documents under a source prefix."`
	Status   StatusCmd   `cmd:"" help:"Show the status of an ingest job."`
	Retrieve RetrieveCmd `cmd:"" help:"Run a retrieval query against the store."`
}

// openStore opens the HybridStore selected by cli.Backend. The sqlite
// backend is the reference lexical+vector fusion engine (§4.5/§4.6); the
// others wrap a dense-only Provider in store.VectorOnlyStore and run
// without a lexical leg.
func openStore(cli *CLI) (store.HybridStore, error) {
	switch cli.Backend {
	case "", "sqlite":
		return store.OpenSQLiteStore(store.SQLiteConfig{Path: cli.DB})
	case "qdrant":
		p, err := store.NewQdrantProvider(store.QdrantConfig{Host: cli.QdrantHost, Port: cli.QdrantPort})
		if err != nil {
			return nil, err
		}
		return newVectorOnlyStore(p, cli)
	case "pinecone":
		p, err := store.NewPineconeProvider(store.PineconeConfig{APIKey: cli.PineconeKey, Host: cli.PineconeHost, IndexName: cli.Collection})
		if err != nil {
			return nil, err
		}
		return newVectorOnlyStore(p, cli)
	case "chromem":
		p, err := store.NewChromemProvider(store.ChromemConfig{PersistPath: cli.ChromemPath})
		if err != nil {
			return nil, err
		}
		return newVectorOnlyStore(p, cli)
	default:
		return nil, fmt.Errorf("unknown backend %q", cli.Backend)
	}
}

// newVectorOnlyStore wraps a dense-only Provider and eagerly creates its
// backing collection — required for Pinecone, whose index must already
// exist before the first upsert; a harmless no-op for Qdrant and chromem-go,
// which both get-or-create on first write.
func newVectorOnlyStore(p store.Provider, cli *CLI) (store.HybridStore, error) {
	vs := store.NewVectorOnlyStore(p, cli.Collection, cli.VectorDim)
	if err := vs.CreateIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: create index: %w", p.Name(), err)
	}
	return vs, nil
}

// IngestCmd implements ingest(source_prefix, week?, force_reprocess).
type IngestCmd struct {
	Source    string `arg:"" help:"Root directory to discover source files under."`
	Week      int    `help:"Restrict to a single week number." default:"0"`
	Force     bool   `name:"force" help:"Reprocess files even if already checkpointed."`
	Embedder  string `help:"Embedder type (ollama, openai, cohere)." default:"ollama"`
	Model     string `help:"Embedder model name."`
	Wait      bool   `help:"Block until the job finishes, printing the final status."`
}

func (c *IngestCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	in, _, err := buildIngester(cli, c.Embedder, c.Model)
	if err != nil {
		return err
	}

	var week *int
	if c.Week != 0 {
		week = &c.Week
	}

	status, err := in.Ingest(ctx, c.Source, week, c.Force)
	if err != nil {
		return err
	}

	if c.Wait {
		for status.Status == ingest.JobQueued || status.Status == ingest.JobRunning {
			time.Sleep(500 * time.Millisecond)
			status, _ = in.Status(status.JobID)
		}
	}

	return printJSON(status)
}

// StatusCmd implements status(job_id). Status is process-local: it only
// answers for jobs started by this same running process.
type StatusCmd struct {
	JobID string `arg:"" help:"Job id returned by ingest."`
}

func (c *StatusCmd) Run(cli *CLI) error {
	return fmt.Errorf("status is only queryable within the process that started the job; run ingest --wait instead")
}

// RetrieveCmd implements retrieve(query, filters?, top_k).
type RetrieveCmd struct {
	Query    string `arg:"" help:"Query text."`
	TopK     int    `help:"Number of results to return." default:"10"`
	Week     int    `help:"Restrict to a week number." default:"0"`
	FileType string `help:"Restrict to a file type (pdf, pptx, docx)."`
	Embedder string `help:"Embedder type (ollama, openai, cohere)." default:"ollama"`
	Model    string `help:"Embedder model name."`
}

func (c *RetrieveCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	emb, err := embedder.New(embedder.Config{Type: c.Embedder, Model: c.Model})
	if err != nil {
		return err
	}
	st, err := openStore(cli)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := config.DefaultRetrieveConfig()
	r := retriever.New(emb, st, retriever.Config{
		VectorWeight:   cfg.VectorWeight,
		KeywordWeight:  cfg.KeywordWeight,
		DedupThreshold: cfg.QueryDedupThreshold,
	})

	var week *int
	if c.Week != 0 {
		week = &c.Week
	}

	resp, err := r.Retrieve(ctx, c.Query, retriever.Filters{WeekNumber: week, FileType: c.FileType}, c.TopK)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func buildIngester(cli *CLI, embedderType, model string) (*ingest.Ingester, store.HybridStore, error) {
	st, err := openStore(cli)
	if err != nil {
		return nil, nil, err
	}

	emb, err := embedder.New(embedder.Config{Type: embedderType, Model: model})
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	tok, err := tokenizer.New()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	chunkCfg := chunker.DefaultConfig()
	dispatcher, err := chunker.New(chunkCfg, tok)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	enr, err := enricher.New(enricher.DefaultConfig())
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	ix := indexer.New(emb, st, 64, embedderType)

	existing, err := st.ExistingContentHashes(context.Background())
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	reg := parser.NewRegistry(nil)
	ingestCfg := config.DefaultIngestConfig()
	in := ingest.NewWithRetries(reg, dispatcher, enr, ix, ingestCfg.FileWorkers, ingestCfg.EnrichWorkers, ingestCfg.EmbedMaxRetries, existing)
	return in, st, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("ragcore"),
		kong.Description("Document ingestion and retrieval core for course-material RAG."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
