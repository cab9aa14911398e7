package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okian/cardio/internal/domain/types"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// MaxJournalLimit caps how many runs Recent returns.
const MaxJournalLimit = 500

// Run is one training-run journal entry.
type Run = types.TrainingRun

// Journal records training runs in SQLite.
type Journal struct {
	db *sql.DB
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS training_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    started_at DATETIME NOT NULL,
    duration_ms INTEGER NOT NULL,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    rows INTEGER NOT NULL,
    dropped_rows INTEGER NOT NULL,
    features INTEGER NOT NULL,
    trees INTEGER NOT NULL,
    train_accuracy REAL NOT NULL,
    test_accuracy REAL NOT NULL,
    precision REAL NOT NULL,
    recall REAL NOT NULL,
    constant_columns TEXT NOT NULL DEFAULT ''
);`

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends a run.
func (j *Journal) Record(ctx context.Context, r Run) error {
	ms := r.DurationMs
	if r.Duration > 0 {
		ms = r.Duration.Milliseconds()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO training_runs (run_id, started_at, duration_ms, status, error, rows, dropped_rows,
			features, trees, train_accuracy, test_accuracy, precision, recall, constant_columns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC(), ms, r.Status, r.Error, r.Rows, r.Dropped,
		r.Features, r.Trees, r.TrainAccuracy, r.TestAccuracy, r.Precision, r.Recall,
		strings.Join(r.Constant, ","))
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > MaxJournalLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, started_at, duration_ms, status, error, rows, dropped_rows, features, trees,
			train_accuracy, test_accuracy, precision, recall, constant_columns
		FROM training_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			constant string
		)
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.DurationMs, &r.Status, &r.Error, &r.Rows, &r.Dropped,
			&r.Features, &r.Trees, &r.TrainAccuracy, &r.TestAccuracy, &r.Precision, &r.Recall, &constant); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(r.DurationMs) * time.Millisecond
		if constant != "" {
			r.Constant = strings.Split(constant, ",")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
