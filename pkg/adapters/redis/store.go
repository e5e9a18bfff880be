// Package redis implements ports.TrackingStore on Redis for runs shared across CI workers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// maxWatchRetries bounds optimistic-lock retries when two writers race on one run.
const maxWatchRetries = 5

// Store implements ports.TrackingStore using Redis.
//
// Layout (relative to prefix):
//
//	experiments            HASH name -> id
//	experiment:seq         INCR counter for experiment IDs
//	experiment:<id>        JSON experiment
//	experiment:<id>:runs   ZSET run id scored by start time (ms)
//	run:<id>               JSON run
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for all tracking keys.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "regtrain:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) experimentsKey() string         { return s.prefix + "experiments" }
func (s *Store) experimentSeqKey() string       { return s.prefix + "experiment:seq" }
func (s *Store) experimentKey(id string) string { return s.prefix + "experiment:" + id }
func (s *Store) runIndexKey(expID string) string {
	return s.prefix + "experiment:" + expID + ":runs"
}
func (s *Store) runKey(id string) string { return s.prefix + "run:" + id }

// GetOrCreateExperiment returns the named experiment, creating it on first use.
func (s *Store) GetOrCreateExperiment(ctx context.Context, name string) (*domain.Experiment, error) {
	exp, err := s.GetExperimentByName(ctx, name)
	if err == nil || !errors.Is(err, domain.ErrExperimentNotFound) {
		return exp, err
	}

	seq, err := s.client.Incr(ctx, s.experimentSeqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate experiment id: %w", err)
	}
	id := strconv.FormatInt(seq, 10)

	claimed, err := s.client.HSetNX(ctx, s.experimentsKey(), name, id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to register experiment: %w", err)
	}
	if !claimed {
		// Another writer registered the name first.
		return s.GetExperimentByName(ctx, name)
	}

	exp = &domain.Experiment{ID: id, Name: name, CreatedAt: time.Now().UTC()}
	data, err := json.Marshal(exp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal experiment: %w", err)
	}
	if err := s.client.Set(ctx, s.experimentKey(id), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to save experiment: %w", err)
	}
	return exp, nil
}

// GetExperimentByName looks up an experiment without creating it.
func (s *Store) GetExperimentByName(ctx context.Context, name string) (*domain.Experiment, error) {
	id, err := s.client.HGet(ctx, s.experimentsKey(), name).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrExperimentNotFound
		}
		return nil, fmt.Errorf("failed to get experiment id: %w", err)
	}

	val, err := s.client.Get(ctx, s.experimentKey(id)).Result()
	if err != nil {
		if err == backend.Nil {
			// Registered but not yet written by the creating writer.
			return &domain.Experiment{ID: id, Name: name}, nil
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	var exp domain.Experiment
	if err := json.Unmarshal([]byte(val), &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal experiment: %w", err)
	}
	return &exp, nil
}

// CreateRun stores the run and indexes it under its experiment.
func (s *Store) CreateRun(ctx context.Context, run *domain.Run) error {
	n, err := s.client.Exists(ctx, s.experimentKey(run.ExperimentID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check experiment: %w", err)
	}
	if n == 0 {
		return domain.ErrExperimentNotFound
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.runKey(run.ID), data, 0)
	pipe.ZAdd(ctx, s.runIndexKey(run.ExperimentID), backend.Z{
		Score:  float64(run.StartTime.UnixMilli()),
		Member: run.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// LogParam records a string parameter.
func (s *Store) LogParam(ctx context.Context, runID, key, value string) error {
	return s.mutate(ctx, runID, func(r *domain.Run) {
		if r.Params == nil {
			r.Params = make(map[string]string)
		}
		r.Params[key] = value
	})
}

// LogMetric records a scalar metric, overwriting any previous value for key.
func (s *Store) LogMetric(ctx context.Context, runID, key string, value float64) error {
	return s.mutate(ctx, runID, func(r *domain.Run) {
		if r.Metrics == nil {
			r.Metrics = make(map[string]float64)
		}
		r.Metrics[key] = value
	})
}

// LogArtifact appends an artifact reference.
func (s *Store) LogArtifact(ctx context.Context, runID string, artifact domain.Artifact) error {
	return s.mutate(ctx, runID, func(r *domain.Run) {
		r.Artifacts = append(r.Artifacts, artifact)
	})
}

// EndRun sets the terminal status and end time.
func (s *Store) EndRun(ctx context.Context, runID string, status domain.RunStatus, end time.Time) error {
	return s.mutate(ctx, runID, func(r *domain.Run) {
		r.Status = status
		r.EndTime = &end
	})
}

// mutate applies fn to the stored run under WATCH so concurrent writers don't lose updates.
func (s *Store) mutate(ctx context.Context, runID string, fn func(*domain.Run)) error {
	key := s.runKey(runID)

	txf := func(tx *backend.Tx) error {
		run, err := s.loadRun(ctx, tx, key)
		if err != nil {
			return err
		}
		if run.Status.Terminal() {
			return domain.ErrRunFinished
		}
		fn(run)

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == backend.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to update run %s: too much contention", runID)
}

type getter interface {
	Get(ctx context.Context, key string) *backend.StringCmd
}

func (s *Store) loadRun(ctx context.Context, c getter, key string) (*domain.Run, error) {
	val, err := c.Get(ctx, key).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run from redis: %w", err)
	}

	var run domain.Run
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	if run.Params == nil {
		run.Params = make(map[string]string)
	}
	if run.Metrics == nil {
		run.Metrics = make(map[string]float64)
	}
	return &run, nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	return s.loadRun(ctx, s.client, s.runKey(runID))
}

// ListRuns returns the experiment's runs, newest first.
// Index entries whose run key has vanished are skipped.
func (s *Store) ListRuns(ctx context.Context, experimentID string) ([]*domain.Run, error) {
	ids, err := s.client.ZRevRange(ctx, s.runIndexKey(experimentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*domain.Run, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetRun(ctx, id)
		if errors.Is(err, domain.ErrRunNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
