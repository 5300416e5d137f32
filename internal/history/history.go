// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records pipeline runs in a SQLite database so past
// digests stay queryable: which papers ran when, with what decision,
// and where the report landed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

const dbFile = "digest.db"

// Run summarizes one pipeline execution.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	PaperCount  int
	Recommended int
	ReportPath  string
	Watermark   string
	Status      string
}

// Entry is one paper's outcome within a run.
type Entry struct {
	RunID        string
	PaperID      string
	Title        string
	Decision     string
	ClusterID    int
	ChineseTitle string
}

// Store manages the run-history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database under cfg.DataDir.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			paper_count INTEGER NOT NULL,
			recommended INTEGER NOT NULL,
			report_path TEXT,
			watermark TEXT,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_papers (
			run_id TEXT NOT NULL REFERENCES runs(id),
			paper_id TEXT NOT NULL,
			title TEXT,
			chinese_title TEXT,
			decision TEXT,
			cluster_id INTEGER,
			PRIMARY KEY (run_id, paper_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_papers_paper_id ON run_papers(paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun inserts a run and its papers in one transaction and returns
// the generated run ID.
func (s *Store) RecordRun(ctx context.Context, run Run, papers []types.ReviewedPaper) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, paper_count, recommended, report_path, watermark, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		len(papers),
		countRecommended(papers),
		run.ReportPath,
		run.Watermark,
		run.Status,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, p := range papers {
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_papers (run_id, paper_id, title, chinese_title, decision, cluster_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, p.Paper.ID, p.Paper.Title, p.Assessment.ChineseTitle, p.Assessment.Decision, p.ClusterID,
		)
		if err != nil {
			return "", fmt.Errorf("inserting run paper %s: %w", p.Paper.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

func countRecommended(papers []types.ReviewedPaper) int {
	n := 0
	for _, p := range papers {
		if p.Assessment.Decision == types.DecisionRecommend {
			n++
		}
	}
	return n
}

// ListRuns returns the most recent runs, newest first, up to limit
// (0 means the configured default).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, paper_count, recommended, report_path, watermark, status
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.PaperCount, &r.Recommended,
			&r.ReportPath, &r.Watermark, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunPapers returns the papers recorded for a run.
func (s *Store) RunPapers(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, paper_id, title, chinese_title, decision, cluster_id
		 FROM run_papers WHERE run_id = ? ORDER BY paper_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run papers: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.PaperID, &e.Title, &e.ChineseTitle, &e.Decision, &e.ClusterID); err != nil {
			return nil, fmt.Errorf("scanning run paper: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SeenPaperIDs reports which of ids already appear in any recorded run.
// The search stage uses this to skip papers the digest already covered.
func (s *Store) SeenPaperIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	if len(ids) == 0 {
		return seen, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT paper_id FROM run_papers WHERE paper_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying seen papers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning paper id: %w", err)
		}
		seen[id] = true
	}
	return seen, rows.Err()
}
