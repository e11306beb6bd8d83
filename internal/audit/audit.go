// Package audit persists staged-candidate traces to SQLite when the ledger
// is enabled. Each batch run gets its own run id so re-runs against the same
// database stay distinguishable.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/beyondchenlin/reelstitch/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS staged_segments (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL,
    script      TEXT NOT NULL,
    ordinal     INTEGER NOT NULL,
    cand_rank   INTEGER NOT NULL,
    term        TEXT NOT NULL,
    source_path TEXT NOT NULL,
    start_sec   REAL NOT NULL,
    end_sec     REAL NOT NULL,
    score       REAL NOT NULL,
    copied      INTEGER NOT NULL,
    staged_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_staged_segments_run ON staged_segments(run_id);
`

// Ledger is a SQLite-backed audit log.
type Ledger struct {
	db    *sql.DB
	runID string
}

// Open connects to the ledger database, creating it and its schema if
// needed, and starts a fresh run.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &Ledger{db: db, runID: uuid.NewString()}, nil
}

// RunID identifies the current batch run within the ledger.
func (l *Ledger) RunID() string { return l.runID }

func (l *Ledger) RecordStaged(ctx context.Context, rec types.StagedRecord) error {
	copied := 0
	if rec.Copied {
		copied = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO staged_segments (
            run_id, script, ordinal, cand_rank, term,
            source_path, start_sec, end_sec, score, copied, staged_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.runID, rec.Script, rec.Ordinal, rec.Rank, rec.Term,
		rec.Source, rec.StartSec, rec.EndSec, rec.Score, copied,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert staged record: %w", err)
	}
	return nil
}

// StagedCount returns the number of records written for this run.
func (l *Ledger) StagedCount(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staged_segments WHERE run_id = ?`, l.runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count staged records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Nop discards all records; it backs the audit port when the ledger is off.
type Nop struct{}

func (Nop) RecordStaged(context.Context, types.StagedRecord) error { return nil }
