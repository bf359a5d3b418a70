// Package buildlog records build outcomes in a per-project SQLite database,
// giving `scribe history` and the preview status page something to show.
package buildlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultPath is the build log location relative to the project root.
const DefaultPath = ".scribe/builds.db"

// Record is one completed build attempt.
type Record struct {
	ID       string
	Target   string
	Format   string
	Source   string
	Started  time.Time
	Duration time.Duration
	Success  bool
	Error    string
}

// Store is an append-only SQLite-backed build history.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the build log at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create build log directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open build log: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize build log schema: %w", err)
	}
	return s, nil
}

// OpenProject opens the build log at its conventional location under rootDir.
func OpenProject(rootDir string) (*Store, error) {
	return Open(filepath.Join(rootDir, DefaultPath))
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		format TEXT NOT NULL,
		source TEXT NOT NULL,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		success INTEGER NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	CREATE INDEX IF NOT EXISTS idx_builds_target ON builds(target);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a build record.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, target, format, source, started, duration_ms, success, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.Target, r.Format, r.Source, r.Started.UnixMilli(), r.Duration.Milliseconds(), boolToInt(r.Success), r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns up to n build records, most recent first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, target, format, source, started, duration_ms, success, error FROM builds ORDER BY started DESC, id LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var started, durationMS int64
		var success int
		if err := rows.Scan(&r.ID, &r.Target, &r.Format, &r.Source, &started, &durationMS, &success, &r.Error); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.Started = time.UnixMilli(started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Success = success != 0
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate build records: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
