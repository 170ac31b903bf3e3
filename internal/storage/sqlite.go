package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/minigrep/internal/models"
)

// SQLiteHistory implements History using SQLite.
type SQLiteHistory struct {
	db   *sql.DB
	path string
}

var _ History = (*SQLiteHistory)(nil)

// NewSQLiteHistory opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteHistory{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		document_path TEXT NOT NULL,
		query TEXT NOT NULL,
		mode TEXT NOT NULL,
		result_count INTEGER NOT NULL,
		total_matches INTEGER NOT NULL,
		content_hash TEXT,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON search_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_document_id ON search_runs(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteHistory) Path() string {
	return s.path
}

// RecordRun inserts a run.
func (s *SQLiteHistory) RecordRun(ctx context.Context, run *models.RunRecord) error {
	run.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_runs (id, document_id, document_path, query, mode,
		 result_count, total_matches, content_hash, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.DocumentID, run.DocumentPath, run.Query, run.Mode,
		run.ResultCount, run.TotalMatches, run.ContentHash, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// CountRuns returns the total number of runs.
func (s *SQLiteHistory) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_runs`).Scan(&count)
	return count, err
}

// CountRunsForDocument returns the number of runs against documentID.
func (s *SQLiteHistory) CountRunsForDocument(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM search_runs WHERE document_id = ?`, documentID,
	).Scan(&count)
	return count, err
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteHistory) ListRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, document_path, query, mode, result_count,
		 total_matches, content_hash, duration_ms, created_at
		 FROM search_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		var run models.RunRecord
		var contentHash sql.NullString
		if err := rows.Scan(&run.ID, &run.DocumentID, &run.DocumentPath, &run.Query, &run.Mode,
			&run.ResultCount, &run.TotalMatches, &contentHash, &run.DurationMs, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.ContentHash = contentHash.String
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
