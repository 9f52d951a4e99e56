// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists extracted records in a SQLite index with
// full-text search over compound names and property text.
package knowledge

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/chemextract/internal/extract"
	"github.com/pdiddy/chemextract/internal/model"
	"github.com/pdiddy/chemextract/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	dbFile       = "chemextract.db"
)

// Store manages the knowledge base SQLite database.
type Store struct {
	db           *sql.DB
	knowledgeDir string
	registry     map[string]*model.Schema
	maxResults   int
}

// NewStore opens or creates the knowledge base database at
// knowledgeDir/index/chemextract.db, creating the schema if needed.
func NewStore(cfg types.KnowledgeBaseConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.KnowledgeDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:           db,
		knowledgeDir: cfg.KnowledgeDir,
		registry:     model.Registry(),
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			model TEXT NOT NULL,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			specifier TEXT,
			raw_value TEXT,
			raw_units TEXT,
			value TEXT,
			error REAL,
			units TEXT,
			compound_names TEXT,
			compound_labels TEXT,
			serialized TEXT NOT NULL,
			searchable TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_paper_id ON records(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_model ON records(model)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			paper_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(searchable, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, searchable) VALUES (new.rowid, new.searchable);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, searchable) VALUES('delete', old.rowid, old.searchable);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, searchable) VALUES('delete', old.rowid, old.searchable);
				INSERT INTO records_fts(rowid, searchable) VALUES (new.rowid, new.searchable);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a knowledge base indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of papers processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads record YAML files from knowledgeDir/extracted/ and
// populates the database. It detects new, changed, and unchanged files
// for incremental updates. On success it rewrites export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.knowledgeDir, extractedDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-records.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		paperID := strings.TrimSuffix(entry.Name(), "-records.yaml")
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE paper_id = ?`, paperID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", paperID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		result, err := extract.LoadResult(filePath, s.registry)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestPaper(ctx, paperID, result, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d records)\n", paperID, len(result.Records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d records)\n", paperID, len(result.Records))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestPaper(ctx context.Context, paperID string, result *extract.Result, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old records if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE paper_id = ?`, paperID); err != nil {
			return fmt.Errorf("deleting old records: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO papers (id, title) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title`,
		paperID, result.Title,
	); err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records
			(id, model, paper_id, specifier, raw_value, raw_units, value, error,
			 units, compound_names, compound_labels, serialized, searchable)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range result.Records {
		row := newRow(paperID, r)
		_, err := stmt.ExecContext(ctx,
			row.id, row.model, paperID, row.specifier, row.rawValue, row.rawUnits,
			row.value, row.errMargin, row.units, row.names, row.labels,
			row.serialized, row.searchable,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", row.id, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO indexing_status (paper_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		paperID, modTime,
	); err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// row is the flattened database form of one record.
type row struct {
	id         string
	model      string
	specifier  string
	rawValue   string
	rawUnits   string
	value      string
	errMargin  float64
	units      string
	names      string
	labels     string
	serialized string
	searchable string
}

func newRow(paperID string, r *model.Record) row {
	names := r.Strings("names")
	labels := r.Strings("labels")
	if cm := r.Nested("compound"); cm != nil {
		names = cm.Strings("names")
		labels = cm.Strings("labels")
	}
	namesJSON, _ := json.Marshal(names)
	labelsJSON, _ := json.Marshal(labels)
	valueJSON, _ := json.Marshal(r.Floats("value"))
	serialized, _ := yaml.Marshal(r)
	margin, _ := r.Float("error")

	searchable := strings.Join(append(append([]string{
		r.Schema().Name, r.String("specifier"), r.String("raw_value"), r.String("units"),
	}, names...), labels...), " ")

	return row{
		id:         stableID(paperID, r.Schema().Name, string(serialized)),
		model:      r.Schema().Name,
		specifier:  r.String("specifier"),
		rawValue:   r.String("raw_value"),
		rawUnits:   r.String("raw_units"),
		value:      string(valueJSON),
		errMargin:  margin,
		units:      r.String("units"),
		names:      string(namesJSON),
		labels:     string(labelsJSON),
		serialized: string(serialized),
		searchable: searchable,
	}
}

// stableID generates a deterministic record ID: the first 12 hex
// characters of SHA-256 over paper ID, model name, and serialized form.
func stableID(paperID, modelName, serialized string) string {
	h := sha256.New()
	h.Write([]byte(paperID))
	h.Write([]byte(modelName))
	h.Write([]byte(serialized))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
