// Package catalog persists run history in SQLite: one row per organize run
// and one row per file event, queryable after the fact via `shoebox report`.
// The spec-level source of truth for placements stays the index log; the
// catalog exists for humans.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on schema changes; mismatched databases must be
// deleted and recreated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// shoebox version.
var ErrSchemaMismatch = errors.New("catalog schema version mismatch")

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Run summarizes one organize run.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	SourceDir       string
	LibraryDir      string
	DryRun          bool
	Processed       int
	Placed          int
	Duplicates      int
	Healed          int
	SidecarUpgrades int
	Failures        int
}

// Event records what happened to a single file within a run.
type Event struct {
	RunID      string
	SourcePath string
	Hash       string
	Action     string
	Status     string
	Evidence   string
	Year       string
	DestPath   string
	Detail     string
}

// Store wraps the SQLite catalog database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the catalog at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create catalog schema: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	return s.execWithRetry(ctx,
		`INSERT INTO runs (id, started_at, source_dir, library_dir, dry_run) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.SourceDir, run.LibraryDir, boolToInt(run.DryRun))
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	return s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, placed = ?, duplicates = ?, healed = ?, sidecar_upgrades = ?, failures = ? WHERE id = ?`,
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Processed, run.Placed, run.Duplicates, run.Healed, run.SidecarUpgrades, run.Failures,
		run.ID)
}

// RecordEvent appends one file event.
func (s *Store) RecordEvent(ctx context.Context, event Event) error {
	return s.execWithRetry(ctx,
		`INSERT INTO file_events (run_id, source_path, content_hash, action, status, evidence, year, dest_path, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.RunID, event.SourcePath, event.Hash, event.Action, event.Status,
		event.Evidence, event.Year, event.DestPath, event.Detail,
		time.Now().UTC().Format(time.RFC3339))
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), source_dir, library_dir, dry_run,
		        processed, placed, duplicates, healed, sidecar_upgrades, failures
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
			dryRun            int
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.SourceDir, &run.LibraryDir, &dryRun,
			&run.Processed, &run.Placed, &run.Duplicates, &run.Healed, &run.SidecarUpgrades, &run.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		}
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunEvents returns the file events of one run in insertion order.
func (s *Store) RunEvents(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, content_hash, action, status, evidence, year, dest_path, detail
		 FROM file_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.RunID, &event.SourcePath, &event.Hash, &event.Action,
			&event.Status, &event.Evidence, &event.Year, &event.DestPath, &event.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
