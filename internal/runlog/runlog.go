// Package runlog records pipeline stage runs in a local SQLite file.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Entry is one recorded source run.
type Entry struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	RowsOut     int64          `json:"rows_out"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Statuses of a run.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Log provides read/write access to the run log database.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the run log at path and applies the
// schema. The parent directory is created on demand.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "runlog: create dir for %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	rows_out     INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	metadata     TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source, started_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (l *Log) migrate() error {
	_, err := l.db.Exec(migration)
	return eris.Wrap(err, "runlog: migrate")
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// LastSuccess returns the start time of the most recent completed run for a
// source, or nil if it never completed.
func (l *Log) LastSuccess(ctx context.Context, source string) (*time.Time, error) {
	var t time.Time
	err := l.db.QueryRowContext(ctx,
		`SELECT started_at FROM runs
		 WHERE source = ? AND status = ?
		 ORDER BY started_at DESC LIMIT 1`,
		source, StatusComplete,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "runlog: last success for %s", source)
	}
	return &t, nil
}

// Start records the beginning of a run and returns its ID.
func (l *Log) Start(ctx context.Context, source string) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		id, source, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "runlog: start run for %s", source)
	}
	return id, nil
}

// Complete marks a run as successfully completed.
func (l *Log) Complete(ctx context.Context, runID string, rowsOut int64, metadata map[string]any) error {
	var metaJSON []byte
	if metadata != nil {
		var err error
		metaJSON, err = json.Marshal(metadata)
		if err != nil {
			return eris.Wrap(err, "runlog: marshal metadata")
		}
	}

	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, rows_out = ?, metadata = ? WHERE id = ?`,
		StatusComplete, time.Now().UTC(), rowsOut, nullableString(metaJSON), runID,
	)
	return eris.Wrapf(err, "runlog: complete run %s", runID)
}

// Fail marks a run as failed with an error message.
func (l *Log) Fail(ctx context.Context, runID string, message string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		StatusFailed, time.Now().UTC(), message, runID,
	)
	return eris.Wrapf(err, "runlog: fail run %s", runID)
}

// Recent returns the most recent runs, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, source, status, started_at, completed_at, rows_out,
		        COALESCE(error, ''), COALESCE(metadata, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: query recent")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var completed sql.NullTime
		var metaJSON string
		if err := rows.Scan(&e.ID, &e.Source, &e.Status, &e.StartedAt,
			&completed, &e.RowsOut, &e.Error, &metaJSON); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		if completed.Valid {
			t := completed.Time
			e.CompletedAt = &t
		}
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &e.Metadata); err != nil {
				return nil, eris.Wrapf(err, "runlog: decode metadata for %s", e.ID)
			}
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "runlog: iterate entries")
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
