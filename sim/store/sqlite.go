// Package store persists finished occupancy runs in SQLite so results from
// different distributions, seeds or budgets can be compared later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/inference-sim/occupancy-sim/sim"
)

var (
	// ErrRunNotFound is returned by GetRun for an unknown id.
	ErrRunNotFound = errors.New("run not found")

	// ErrNoDatabase is returned by OpenExisting when path does not exist.
	ErrNoDatabase = errors.New("no run database")
)

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TEXT    NOT NULL,
	seed          INTEGER NOT NULL,
	samples       INTEGER NOT NULL,
	warm_up       INTEGER NOT NULL,
	workers       INTEGER NOT NULL,
	max_duration  INTEGER NOT NULL,
	mean          REAL    NOT NULL,
	expected_mean REAL    NOT NULL,
	distribution  BLOB    NOT NULL,
	counts        BLOB    NOT NULL
)`

// RunRecord is one persisted simulation run.
type RunRecord struct {
	ID           int64
	CreatedAt    time.Time
	Seed         int64
	Samples      int64
	WarmUp       int64
	Workers      int
	MaxDuration  int64
	Mean         float64
	ExpectedMean float64
	Distribution sim.TenancyDistribution
	Counts       []int64 // per occupancy level, 0..max observed
}

// Histogram rebuilds the run's occupancy histogram.
func (r *RunRecord) Histogram() (*sim.Histogram, error) {
	return sim.HistogramFromCounts(r.Counts)
}

// Store is a SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the run database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenExisting opens a run database that must already exist. Read-only
// commands use it so a mistyped path is reported instead of created.
func OpenExisting(path string) (*Store, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNoDatabase, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat run database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("run database %s is a directory", path)
	}
	return Open(path)
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts rec and returns its id. CreatedAt defaults to now.
func (s *Store) SaveRun(ctx context.Context, rec *RunRecord) (int64, error) {
	dist, err := json.Marshal(rec.Distribution)
	if err != nil {
		return 0, fmt.Errorf("encode distribution: %w", err)
	}
	counts, err := json.Marshal(rec.Counts)
	if err != nil {
		return 0, fmt.Errorf("encode counts: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(created_at, seed, samples, warm_up, workers, max_duration, mean, expected_mean, distribution, counts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.Format(time.RFC3339Nano), rec.Seed, rec.Samples, rec.WarmUp, rec.Workers,
		rec.MaxDuration, rec.Mean, rec.ExpectedMean, dist, counts)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = created
	return id, nil
}

const selectRun = `SELECT id, created_at, seed, samples, warm_up, workers, max_duration,
	mean, expected_mean, distribution, counts FROM runs`

// GetRun loads the run with the given id.
func (s *Store) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	return rec, err
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	query := selectRun + ` ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*RunRecord, error) {
	var (
		rec          RunRecord
		created      string
		dist, counts []byte
	)
	if err := sc.Scan(&rec.ID, &created, &rec.Seed, &rec.Samples, &rec.WarmUp, &rec.Workers,
		&rec.MaxDuration, &rec.Mean, &rec.ExpectedMean, &dist, &counts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("decode created_at for run %d: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	if err := json.Unmarshal(dist, &rec.Distribution); err != nil {
		return nil, fmt.Errorf("decode distribution for run %d: %w", rec.ID, err)
	}
	if err := json.Unmarshal(counts, &rec.Counts); err != nil {
		return nil, fmt.Errorf("decode counts for run %d: %w", rec.ID, err)
	}
	return &rec, nil
}
