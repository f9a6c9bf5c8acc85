// Package history persists one row per supervised run in SQLite, so
// operators can see what was launched, what triggered shutdown, and how
// it exited.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Shutdown trigger values recorded per run.
const (
	TriggerSignal    = "signal"
	TriggerChildExit = "child_exit"
)

// Run is one supervised session.
type Run struct {
	ID        string
	Plan      string
	StartedAt time.Time
	EndedAt   *time.Time
	Trigger   string
	ExitCode  *int
}

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

var schema = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		plan TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP,
		shutdown_trigger TEXT,
		exit_code INTEGER
	)`,
	"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)",
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize history schema: %w", err)
		}
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}
	return nil
}

// RecordStart inserts the row for a run that just began.
func (s *Store) RecordStart(run *Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, plan, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Plan, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// RecordEnd fills in the outcome of a completed run.
func (s *Store) RecordEnd(id string, endedAt time.Time, trigger string, exitCode int) error {
	res, err := s.db.Exec(
		`UPDATE runs SET ended_at = ?, shutdown_trigger = ?, exit_code = ? WHERE id = ?`,
		endedAt, trigger, exitCode, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record run end: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("no run with id %s", id)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, plan, started_at, ended_at, shutdown_trigger, exit_code
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			endedAt  sql.NullTime
			trigger  sql.NullString
			exitCode sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Plan, &r.StartedAt, &endedAt, &trigger, &exitCode); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if endedAt.Valid {
			t := endedAt.Time
			r.EndedAt = &t
		}
		if trigger.Valid {
			r.Trigger = trigger.String
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			r.ExitCode = &code
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
