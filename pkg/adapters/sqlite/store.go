// Package sqlite implements ports.TrackingStore on a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements ports.TrackingStore using SQLite.
type Store struct {
	db   *sqlx.DB
	Path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to ensure database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection serializes writers; the tracking DB is never contended in-process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, Path: path}, nil
}

type experimentRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	CreatedAt int64  `db:"created_at"`
}

func (r experimentRow) toDomain() *domain.Experiment {
	return &domain.Experiment{
		ID:        strconv.FormatInt(r.ID, 10),
		Name:      r.Name,
		CreatedAt: fromMillis(r.CreatedAt),
	}
}

type runRow struct {
	ID           string        `db:"id"`
	ExperimentID string        `db:"experiment_id"`
	Status       string        `db:"status"`
	StartTime    int64         `db:"start_time"`
	EndTime      sql.NullInt64 `db:"end_time"`
}

// GetOrCreateExperiment returns the named experiment, creating it on first use.
func (s *Store) GetOrCreateExperiment(ctx context.Context, name string) (*domain.Experiment, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO experiments (name, created_at) VALUES (?, ?)`,
		name, toMillis(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment: %w", err)
	}
	return s.GetExperimentByName(ctx, name)
}

// GetExperimentByName looks up an experiment without creating it.
func (s *Store) GetExperimentByName(ctx context.Context, name string) (*domain.Experiment, error) {
	var row experimentRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, created_at FROM experiments WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExperimentNotFound
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return row.toDomain(), nil
}

// CreateRun inserts the run together with any params and metrics it already carries.
func (s *Store) CreateRun(ctx context.Context, run *domain.Run) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM experiments WHERE CAST(id AS TEXT) = ?`, run.ExperimentID)
	if err != nil {
		return fmt.Errorf("failed to check experiment: %w", err)
	}
	if exists == 0 {
		return domain.ErrExperimentNotFound
	}

	var end sql.NullInt64
	if run.EndTime != nil {
		end = sql.NullInt64{Int64: toMillis(*run.EndTime), Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, experiment_id, status, start_time, end_time) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.ExperimentID, string(run.Status), toMillis(run.StartTime), end)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for k, v := range run.Params {
		if err := upsertParam(ctx, tx, run.ID, k, v); err != nil {
			return err
		}
	}
	for k, v := range run.Metrics {
		if err := upsertMetric(ctx, tx, run.ID, k, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LogParam records a string parameter.
func (s *Store) LogParam(ctx context.Context, runID, key, value string) error {
	return s.mutate(ctx, runID, func(tx *sqlx.Tx) error {
		return upsertParam(ctx, tx, runID, key, value)
	})
}

// LogMetric records a scalar metric, overwriting any previous value for key.
func (s *Store) LogMetric(ctx context.Context, runID, key string, value float64) error {
	return s.mutate(ctx, runID, func(tx *sqlx.Tx) error {
		return upsertMetric(ctx, tx, runID, key, value)
	})
}

// LogArtifact records an artifact reference.
func (s *Store) LogArtifact(ctx context.Context, runID string, artifact domain.Artifact) error {
	return s.mutate(ctx, runID, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO artifacts (run_id, path, uri, size) VALUES (?, ?, ?, ?)
			 ON CONFLICT (run_id, path) DO UPDATE SET uri = excluded.uri, size = excluded.size`,
			runID, artifact.Path, artifact.URI, artifact.Size)
		if err != nil {
			return fmt.Errorf("failed to log artifact: %w", err)
		}
		return nil
	})
}

// EndRun sets the terminal status and end time.
func (s *Store) EndRun(ctx context.Context, runID string, status domain.RunStatus, end time.Time) error {
	return s.mutate(ctx, runID, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, end_time = ? WHERE id = ?`,
			string(status), toMillis(end), runID)
		if err != nil {
			return fmt.Errorf("failed to end run: %w", err)
		}
		return nil
	})
}

// mutate runs fn in a transaction after checking that the run exists and is still active.
func (s *Store) mutate(ctx context.Context, runID string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	if err := tx.GetContext(ctx, &status, `SELECT status FROM runs WHERE id = ?`, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRunNotFound
		}
		return fmt.Errorf("failed to read run status: %w", err)
	}
	if domain.RunStatus(status).Terminal() {
		return domain.ErrRunFinished
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetRun loads a run with its params, metrics and artifacts.
func (s *Store) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, experiment_id, status, start_time, end_time FROM runs WHERE id = ?`, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return s.hydrate(ctx, row)
}

// ListRuns returns the experiment's runs, newest first.
func (s *Store) ListRuns(ctx context.Context, experimentID string) ([]*domain.Run, error) {
	var rows []runRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, experiment_id, status, start_time, end_time FROM runs
		 WHERE experiment_id = ? ORDER BY start_time DESC`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*domain.Run, 0, len(rows))
	for _, row := range rows {
		run, err := s.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) hydrate(ctx context.Context, row runRow) (*domain.Run, error) {
	run := domain.NewRun(row.ID, row.ExperimentID, fromMillis(row.StartTime))
	run.Status = domain.RunStatus(row.Status)
	if row.EndTime.Valid {
		end := fromMillis(row.EndTime.Int64)
		run.EndTime = &end
	}

	var params []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &params, `SELECT key, value FROM params WHERE run_id = ?`, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load params: %w", err)
	}
	for _, p := range params {
		run.Params[p.Key] = p.Value
	}

	var metrics []struct {
		Key   string  `db:"key"`
		Value float64 `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &metrics, `SELECT key, value FROM metrics WHERE run_id = ?`, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}
	for _, m := range metrics {
		run.Metrics[m.Key] = m.Value
	}

	if err := s.db.SelectContext(ctx, &run.Artifacts,
		`SELECT path, uri, size FROM artifacts WHERE run_id = ? ORDER BY path`, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	return run, nil
}

func upsertParam(ctx context.Context, tx *sqlx.Tx, runID, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO params (run_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (run_id, key) DO UPDATE SET value = excluded.value`,
		runID, key, value)
	if err != nil {
		return fmt.Errorf("failed to log param: %w", err)
	}
	return nil
}

func upsertMetric(ctx context.Context, tx *sqlx.Tx, runID, key string, value float64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO metrics (run_id, key, value, timestamp) VALUES (?, ?, ?, ?)
		 ON CONFLICT (run_id, key) DO UPDATE SET value = excluded.value, timestamp = excluded.timestamp`,
		runID, key, value, toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to log metric: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
