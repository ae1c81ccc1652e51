// Package joblog keeps a local sqlite record of submitted ingest
// jobs so operators can review what was sent and how it ended without
// querying the remote service.
package joblog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Record is one submitted ingest job.
type Record struct {
	ID             int64
	JobID          string
	Environment    string
	Space          string
	AssetCount     int
	ManifestURL    string
	SubmittedAt    time.Time
	CompletedAt    time.Time
	FinalStatus    string
	Pings          int
	ElapsedSeconds int64
	Message        string
}

// Store manages job history persistence backed by SQLite. A file lock
// guards the database against concurrent CLI invocations.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS ingest_jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL,
    environment TEXT NOT NULL,
    space TEXT NOT NULL,
    asset_count INTEGER NOT NULL,
    manifest_url TEXT NOT NULL DEFAULT '',
    submitted_at TEXT NOT NULL,
    completed_at TEXT,
    final_status TEXT NOT NULL DEFAULT 'unknown',
    pings INTEGER NOT NULL DEFAULT 0,
    elapsed_seconds INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_ingest_jobs_job_id ON ingest_jobs(job_id);
`

// Open initializes or connects to the job log database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("joblog: create directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("joblog: acquire lock: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("joblog: open sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("joblog: apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("joblog: apply schema: %w", err)
	}

	return &Store{db: db, lock: lock, path: path}, nil
}

// Close releases the database and its lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errDB error
	if s.db != nil {
		errDB = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && errDB == nil {
			errDB = err
		}
	}
	return errDB
}

// RecordSubmission inserts a newly submitted job and returns its row
// id.
func (s *Store) RecordSubmission(ctx context.Context, rec Record) (int64, error) {
	submitted := rec.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_jobs (job_id, environment, space, asset_count, manifest_url, submitted_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.JobID, rec.Environment, rec.Space, rec.AssetCount, rec.ManifestURL,
		submitted.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("joblog: record submission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("joblog: last insert id: %w", err)
	}
	return id, nil
}

// RecordOutcome updates the most recent row for jobID with the final
// polled state.
func (s *Store) RecordOutcome(ctx context.Context, jobID, finalStatus string, pings int, elapsed time.Duration, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE ingest_jobs
         SET completed_at = ?, final_status = ?, pings = ?, elapsed_seconds = ?, message = ?
         WHERE id = (SELECT id FROM ingest_jobs WHERE job_id = ? ORDER BY id DESC LIMIT 1)`,
		time.Now().UTC().Format(time.RFC3339Nano), finalStatus, pings,
		int64(elapsed.Seconds()), message, jobID,
	)
	if err != nil {
		return fmt.Errorf("joblog: record outcome: %w", err)
	}
	return nil
}

// List returns the most recent jobs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, environment, space, asset_count, manifest_url,
                submitted_at, completed_at, final_status, pings, elapsed_seconds, message
         FROM ingest_jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("joblog: list jobs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("joblog: iterate jobs: %w", err)
	}
	return records, nil
}

// Find returns the most recent record for jobID.
func (s *Store) Find(ctx context.Context, jobID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, job_id, environment, space, asset_count, manifest_url,
                submitted_at, completed_at, final_status, pings, elapsed_seconds, message
         FROM ingest_jobs WHERE job_id = ? ORDER BY id DESC LIMIT 1`, jobID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var submitted string
	var completed sql.NullString
	err := row.Scan(&rec.ID, &rec.JobID, &rec.Environment, &rec.Space, &rec.AssetCount,
		&rec.ManifestURL, &submitted, &completed, &rec.FinalStatus, &rec.Pings,
		&rec.ElapsedSeconds, &rec.Message)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("joblog: scan record: %w", err)
	}
	if rec.SubmittedAt, err = time.Parse(time.RFC3339Nano, submitted); err != nil {
		return Record{}, fmt.Errorf("joblog: parse submitted_at: %w", err)
	}
	if completed.Valid && completed.String != "" {
		if rec.CompletedAt, err = time.Parse(time.RFC3339Nano, completed.String); err != nil {
			return Record{}, fmt.Errorf("joblog: parse completed_at: %w", err)
		}
	}
	return rec, nil
}
