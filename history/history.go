// Package history persists run summaries in a SQLite table keyed by
// fingerprint, for regression tracking across invocations of the
// --history-db flag.
//
// Grounded on the teacher's own SQLite use: router.mustDB/addr20 open a
// database/sql handle over the sqlite3 driver and run parameterized
// queries against it (router/router.go); syncharvester.
// FlushHarvestedReservesToRouter does the same for a write path
// (syncharvester/syncharvester.go). This package follows the same
// shape - sql.Open("sqlite3", path), a single table, parameterized
// INSERT/SELECT - for a run-history table instead of a pool table.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a thin wrapper over a *sql.DB holding one run-history table.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	fingerprint TEXT NOT NULL,
	test_id     INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL,
	avg_mean    REAL NOT NULL,
	avg_min     REAL NOT NULL,
	avg_max     REAL NOT NULL,
	fairness    REAL NOT NULL
)`

// Open opens (creating if absent) the SQLite database at path and
// ensures the runs table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Row is one recorded run, keyed by fingerprint.
type Row struct {
	Fingerprint string
	TestID      int
	RecordedAt  time.Time
	AvgMean     float64
	AvgMin      float64
	AvgMax      float64
	Fairness    float64
}

// Record appends one run's summary to the history table.
func (s *Store) Record(r Row) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (fingerprint, test_id, recorded_at, avg_mean, avg_min, avg_max, fairness) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Fingerprint, r.TestID, r.RecordedAt.Unix(), r.AvgMean, r.AvgMin, r.AvgMax, r.Fairness,
	)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// ByFingerprint returns every recorded run matching fingerprint, oldest
// first - the regression-tracking query a --history-db consumer runs to
// see how a given configuration's timings have drifted over time.
func (s *Store) ByFingerprint(fingerprint string) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT fingerprint, test_id, recorded_at, avg_mean, avg_min, avg_max, fairness FROM runs WHERE fingerprint = ? ORDER BY recorded_at ASC`,
		fingerprint,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var recordedAt int64
		if err := rows.Scan(&r.Fingerprint, &r.TestID, &recordedAt, &r.AvgMean, &r.AvgMin, &r.AvgMax, &r.Fairness); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.RecordedAt = time.Unix(recordedAt, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
