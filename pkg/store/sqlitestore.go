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

package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// SQLiteConfig configures the SQLite-backed hybrid store: SQLite FTS5
// (real BM25 ranking) fused with sqlite-vec k-NN in one
// transactionally-consistent engine. This is the only backend in the
// retrieval pack offering genuine lexical+vector hybrid search in a single
// store, so it is the reference implementation of spec §4.5/§4.6.
type SQLiteConfig struct {
	Path            string `yaml:"path"`
	VectorDimension int    `yaml:"vector_dimension"`
}

// SetDefaults fills the spec's default vector_dimension (1024).
func (c *SQLiteConfig) SetDefaults() {
	if c.VectorDimension == 0 {
		c.VectorDimension = 1024
	}
	if c.Path == "" {
		c.Path = "ragcore.db"
	}
}

// SQLiteStore implements HybridStore directly on SQLite: FTS5 for the
// lexical leg, sqlite-vec for the dense k-NN leg, fused in Go per §4.6.
type SQLiteStore struct {
	db  *sql.DB
	dim int
}

// OpenSQLiteStore opens (or creates) a SQLite database at cfg.Path and
// installs the FTS5/vec0 schema.
func OpenSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	cfg.SetDefaults()

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite store: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteStore{db: db, dim: cfg.VectorDimension}
	if err := s.CreateIndex(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// CreateIndex installs the chunks table, its FTS5 shadow and the vec0
// k-NN table, matching §4.5's schema decisions (keyword-exact facet
// fields, analyzed text field, fixed-dimension HNSW-equivalent k-NN field).
func (s *SQLiteStore) CreateIndex(ctx context.Context) error {
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS chunks (
    rowid INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id TEXT NOT NULL UNIQUE,
    content TEXT NOT NULL,
    week_number INTEGER,
    file_type TEXT,
    module_name TEXT,
    content_hash TEXT,
    canonical_chunk_id TEXT,
    topic_tags TEXT,
    keywords TEXT,
    ingested_at INTEGER,
    document_modified_at INTEGER,
    metadata TEXT
);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    content,
    content='chunks',
    content_rowid='rowid',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
    INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
END;
CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
END;
CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
    INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    rowid INTEGER PRIMARY KEY,
    embedding float[%d]
);

CREATE INDEX IF NOT EXISTS idx_chunks_week ON chunks(week_number);
CREATE INDEX IF NOT EXISTS idx_chunks_file_type ON chunks(file_type);
CREATE INDEX IF NOT EXISTS idx_chunks_module ON chunks(module_name);
CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(content_hash);
`, s.dim)

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating sqlite schema: %w", err)
	}
	return nil
}

// Upsert writes docs, replacing any existing row for the same chunk_id.
func (s *SQLiteStore) Upsert(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range docs {
		var week any
		if d.WeekNumber != nil {
			week = *d.WeekNumber
		}
		topics, _ := json.Marshal(d.TopicTags)
		keywords, _ := json.Marshal(d.Keywords)
		metadata, _ := json.Marshal(d.Metadata)

		res, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (chunk_id, content, week_number, file_type, module_name,
				content_hash, canonical_chunk_id, topic_tags, keywords, ingested_at,
				document_modified_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(chunk_id) DO UPDATE SET
				content = excluded.content,
				week_number = excluded.week_number,
				file_type = excluded.file_type,
				module_name = excluded.module_name,
				content_hash = excluded.content_hash,
				canonical_chunk_id = excluded.canonical_chunk_id,
				topic_tags = excluded.topic_tags,
				keywords = excluded.keywords,
				ingested_at = excluded.ingested_at,
				document_modified_at = excluded.document_modified_at,
				metadata = excluded.metadata
		`, d.ID, d.Text, week, d.FileType, d.ModuleName, d.ContentHash, d.CanonicalChunkID,
			string(topics), string(keywords), d.IngestedAt, d.DocumentModifiedAt, string(metadata))
		if err != nil {
			return fmt.Errorf("upserting chunk %s: %w", d.ID, err)
		}

		var rowID int64
		if n, _ := res.RowsAffected(); n == 0 || res == nil {
			if err := tx.QueryRowContext(ctx, "SELECT rowid FROM chunks WHERE chunk_id = ?", d.ID).Scan(&rowID); err != nil {
				return fmt.Errorf("resolving rowid for chunk %s: %w", d.ID, err)
			}
		} else {
			rowID, _ = res.LastInsertId()
			if rowID == 0 {
				if err := tx.QueryRowContext(ctx, "SELECT rowid FROM chunks WHERE chunk_id = ?", d.ID).Scan(&rowID); err != nil {
					return fmt.Errorf("resolving rowid for chunk %s: %w", d.ID, err)
				}
			}
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO vec_chunks (rowid, embedding) VALUES (?, ?)",
			rowID, serializeFloat32(d.Embedding)); err != nil {
			return fmt.Errorf("upserting embedding for chunk %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteByQuery deletes every chunk matching filter, used when a
// re-ingested file's modification timestamp supersedes its prior chunks.
func (s *SQLiteStore) DeleteByQuery(ctx context.Context, filter Filter) error {
	where, args := filterClause(filter)
	if where == "" {
		return fmt.Errorf("refusing delete-by-query with an empty filter")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT rowid FROM chunks WHERE "+where, args...)
	if err != nil {
		return err
	}
	var rowIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		rowIDs = append(rowIDs, id)
	}
	rows.Close()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range rowIDs {
		if _, err := tx.ExecContext(ctx, "DELETE FROM vec_chunks WHERE rowid = ?", id); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE "+where, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// Exists reports whether chunkID is already stored.
func (s *SQLiteStore) Exists(ctx context.Context, chunkID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE chunk_id = ?", chunkID).Scan(&n)
	return n > 0, err
}

// ExistingContentHashes returns every content_hash already stored, mapped
// to the chunk_id that carries it, so the exact-dedup stage can be
// pre-seeded with hashes already present in the index (§4.4 Stage A).
func (s *SQLiteStore) ExistingContentHashes(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT content_hash, chunk_id FROM chunks WHERE content_hash != ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var hash, id string
		if err := rows.Scan(&hash, &id); err != nil {
			return nil, err
		}
		out[hash] = id
	}
	return out, rows.Err()
}

// HybridSearch submits a vector k-NN clause and an FTS5 BM25 clause,
// applies facet filters, and fuses both legs with a min-max-normalized
// weighted average per §4.6.
func (s *SQLiteStore) HybridSearch(ctx context.Context, req SearchRequest) ([]Hit, error) {
	where, args := filterClause(req.Filter)
	if where == "" {
		where = "1=1"
	}

	vectorHits, err := s.vectorLeg(ctx, req.QueryVector, req.TopK, where, args)
	if err != nil {
		return nil, fmt.Errorf("vector leg: %w", err)
	}
	keywordHits, err := s.keywordLeg(ctx, req.QueryText, req.TopK, where, args)
	if err != nil {
		return nil, fmt.Errorf("keyword leg: %w", err)
	}

	return fuseLegs(vectorHits, keywordHits, req.VectorWeight, req.KeywordWeight), nil
}

type legHit struct {
	chunkID  string
	text     string
	metadata map[string]any
	score    float64
}

func (s *SQLiteStore) vectorLeg(ctx context.Context, vector []float32, topK int, where string, args []any) ([]legHit, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT c.chunk_id, c.content, c.week_number, c.file_type, c.module_name,
			c.topic_tags, c.keywords, v.distance
		FROM vec_chunks v
		JOIN chunks c ON c.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ? AND (%s)
		ORDER BY v.distance
	`, where)
	queryArgs := append([]any{serializeFloat32(vector), topK}, args...)

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legHit
	for rows.Next() {
		var h legHit
		var week sql.NullInt64
		var fileType, module, topics, keywords string
		var distance float64
		if err := rows.Scan(&h.chunkID, &h.text, &week, &fileType, &module, &topics, &keywords, &distance); err != nil {
			return nil, err
		}
		h.score = 1 - distance
		h.metadata = metadataFromRow(week, fileType, module, topics, keywords)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) keywordLeg(ctx context.Context, queryText string, topK int, where string, args []any) ([]legHit, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT c.chunk_id, c.content, c.week_number, c.file_type, c.module_name,
			c.topic_tags, c.keywords, f.rank
		FROM chunks_fts f
		JOIN chunks c ON c.rowid = f.rowid
		WHERE chunks_fts MATCH ? AND (%s)
		ORDER BY f.rank
		LIMIT ?
	`, where)
	queryArgs := append([]any{ftsQuery(queryText)}, args...)
	queryArgs = append(queryArgs, topK)

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legHit
	for rows.Next() {
		var h legHit
		var week sql.NullInt64
		var fileType, module, topics, keywords string
		var rank float64
		if err := rows.Scan(&h.chunkID, &h.text, &week, &fileType, &module, &topics, &keywords, &rank); err != nil {
			return nil, err
		}
		h.score = -rank // FTS5 rank is negative, lower (more negative) is better
		h.metadata = metadataFromRow(week, fileType, module, topics, keywords)
		out = append(out, h)
	}
	return out, rows.Err()
}

// ftsQuery quotes each query token so punctuation in course-material text
// doesn't break FTS5's query syntax.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		fields[i] = `"` + f + `"`
	}
	return strings.Join(fields, " OR ")
}

func metadataFromRow(week sql.NullInt64, fileType, module, topicsJSON, keywordsJSON string) map[string]any {
	m := map[string]any{"file_type": fileType, "module_name": module}
	if week.Valid {
		m["week_number"] = week.Int64
	}
	var topics, keywords []string
	json.Unmarshal([]byte(topicsJSON), &topics)
	json.Unmarshal([]byte(keywordsJSON), &keywords)
	m["topic_tags"] = topics
	m["keywords"] = keywords
	return m
}

// fuseLegs merges the vector and keyword leg result sets into one scored,
// deduplicated candidate list via normalize-then-weighted-average (§4.6).
func fuseLegs(vectorHits, keywordHits []legHit, vectorWeight, keywordWeight float64) []Hit {
	order := make([]string, 0, len(vectorHits)+len(keywordHits))
	byID := make(map[string]*legHit)
	addAll := func(hits []legHit) {
		for i := range hits {
			h := hits[i]
			if _, ok := byID[h.chunkID]; !ok {
				order = append(order, h.chunkID)
			}
			byID[h.chunkID] = &h
		}
	}
	addAll(vectorHits)
	addAll(keywordHits)

	vectorScoreByID := make(map[string]float64, len(vectorHits))
	for _, h := range vectorHits {
		vectorScoreByID[h.chunkID] = h.score
	}
	keywordScoreByID := make(map[string]float64, len(keywordHits))
	for _, h := range keywordHits {
		keywordScoreByID[h.chunkID] = h.score
	}

	vectorScores := make([]float64, len(order))
	keywordScores := make([]float64, len(order))
	for i, id := range order {
		vectorScores[i] = vectorScoreByID[id]
		keywordScores[i] = keywordScoreByID[id]
	}
	fused := fuseScores(vectorScores, keywordScores, vectorWeight, keywordWeight)

	hits := make([]Hit, len(order))
	for i, id := range order {
		h := byID[id]
		hits[i] = Hit{ChunkID: id, Score: fused[i], Text: h.text, Metadata: h.metadata}
	}
	sortHitsByScoreDesc(hits)
	return hits
}

func filterClause(f Filter) (string, []any) {
	var clauses []string
	var args []any
	if f.WeekNumber != nil {
		clauses = append(clauses, "c.week_number = ?")
		args = append(args, *f.WeekNumber)
	}
	if f.FileType != "" {
		clauses = append(clauses, "c.file_type = ?")
		args = append(args, f.FileType)
	}
	if f.ModuleName != "" {
		clauses = append(clauses, "c.module_name = ?")
		args = append(args, f.ModuleName)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return strings.Join(clauses, " AND "), args
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// serializeFloat32 converts a float32 slice to little-endian bytes for
// sqlite-vec's vec0 column type.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

var _ HybridStore = (*SQLiteStore)(nil)
