// Package store records filter runs and their per-step estimates in SQLite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/leoorshansky/KalmanFilterExample/matrix"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id            TEXT PRIMARY KEY,
		source            TEXT NOT NULL,
		dimension         INTEGER NOT NULL,
		extended          INTEGER NOT NULL DEFAULT 0,
		config            TEXT,
		created_at_ns     BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS estimates (
		run_id            TEXT NOT NULL,
		step              INTEGER NOT NULL,
		measurement       TEXT NOT NULL,
		state             TEXT NOT NULL,
		covariance        TEXT NOT NULL,
		skipped           INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, step),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);
`

// RunInfo describes a filter run.
type RunInfo struct {
	// Source names where measurements came from: a data file or an example model
	Source string
	// Dim is the state dimension
	Dim int
	// Extended is set for extended filter runs
	Extended bool
	// Config is the YAML encoded filter configuration
	Config string
}

// Step is a recorded filter step.
type Step struct {
	Index       int
	Measurement mat.Vector
	State       mat.Vector
	Cov         mat.Symmetric
	Skipped     bool
}

// DB is a SQLite backed run recorder.
type DB struct {
	db *sql.DB
}

// Open opens the database at path, creating the schema if needed.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// BeginRun records a new run and returns its ID.
func (d *DB) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	runID := uuid.New().String()

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, source, dimension, extended, config, created_at_ns) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, info.Source, info.Dim, info.Extended, info.Config, time.Now().UnixNano(),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}

	return runID, nil
}

// RecordStep records the estimate produced by step of run runID.
func (d *DB) RecordStep(ctx context.Context, runID string, s Step) error {
	if s.Measurement == nil || s.State == nil || s.Cov == nil {
		return errors.Errorf("incomplete step %d", s.Index)
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO estimates (run_id, step, measurement, state, covariance, skipped) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, s.Index, literal.Format(s.Measurement), literal.Format(s.State), literal.FromMatrix(s.Cov).String(), s.Skipped,
	)
	if err != nil {
		return errors.Wrapf(err, "insert step %d", s.Index)
	}

	return nil
}

// Run returns the description of run runID.
func (d *DB) Run(ctx context.Context, runID string) (*RunInfo, error) {
	var info RunInfo
	var cfg sql.NullString

	err := d.db.QueryRowContext(ctx,
		`SELECT source, dimension, extended, config FROM runs WHERE run_id = ?`, runID,
	).Scan(&info.Source, &info.Dim, &info.Extended, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "get run %s", runID)
	}
	info.Config = cfg.String

	return &info, nil
}

// Runs returns the IDs of all recorded runs, oldest first.
func (d *DB) Runs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY created_at_ns, rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Steps returns every recorded step of run runID ordered by step.
func (d *DB) Steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT step, measurement, state, covariance, skipped FROM estimates WHERE run_id = ? ORDER BY step`, runID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "list steps of %s", runID)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var s Step
		var z, x, p string
		if err := rows.Scan(&s.Index, &z, &x, &p, &s.Skipped); err != nil {
			return nil, errors.Wrap(err, "scan step")
		}

		if s.Measurement, err = vector(z); err != nil {
			return nil, err
		}
		if s.State, err = vector(x); err != nil {
			return nil, err
		}
		if s.Cov, err = symmetric(p); err != nil {
			return nil, err
		}

		steps = append(steps, s)
	}

	return steps, rows.Err()
}

func vector(s string) (mat.Vector, error) {
	a, err := literal.Parse(s)
	if err != nil {
		return nil, errors.Wrap(err, "stored vector")
	}

	return a.Vector(), nil
}

func symmetric(s string) (mat.Symmetric, error) {
	a, err := literal.Parse(s)
	if err != nil {
		return nil, errors.Wrap(err, "stored covariance")
	}

	m, err := a.Dense()
	if err != nil {
		return nil, err
	}

	return matrix.Symmetrize(m)
}
