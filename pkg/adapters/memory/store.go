package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
)

// Store implements ports.TrackingStore in memory.
// Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	experiments map[string]*domain.Experiment // by ID
	byName      map[string]string             // name -> ID
	runs        map[string]*domain.Run
	nextID      int
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		experiments: make(map[string]*domain.Experiment),
		byName:      make(map[string]string),
		runs:        make(map[string]*domain.Run),
	}
}

// GetOrCreateExperiment returns the named experiment, creating it on first use.
func (s *Store) GetOrCreateExperiment(ctx context.Context, name string) (*domain.Experiment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[name]; ok {
		exp := *s.experiments[id]
		return &exp, nil
	}

	// IDs are sequential, like the SQL store's autoincrement.
	s.nextID++
	exp := &domain.Experiment{
		ID:        strconv.Itoa(s.nextID),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.experiments[exp.ID] = exp
	s.byName[name] = exp.ID

	ret := *exp
	return &ret, nil
}

// GetExperimentByName looks up an experiment without creating it.
func (s *Store) GetExperimentByName(ctx context.Context, name string) (*domain.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return nil, domain.ErrExperimentNotFound
	}
	exp := *s.experiments[id]
	return &exp, nil
}

// CreateRun stores a copy of run.
func (s *Store) CreateRun(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.experiments[run.ExperimentID]; !ok {
		return domain.ErrExperimentNotFound
	}
	s.runs[run.ID] = copyRun(run)
	return nil
}

// LogParam records a string parameter.
func (s *Store) LogParam(ctx context.Context, runID, key, value string) error {
	return s.mutate(runID, func(r *domain.Run) {
		r.Params[key] = value
	})
}

// LogMetric records a scalar metric, overwriting any previous value for key.
func (s *Store) LogMetric(ctx context.Context, runID, key string, value float64) error {
	return s.mutate(runID, func(r *domain.Run) {
		r.Metrics[key] = value
	})
}

// LogArtifact appends an artifact reference.
func (s *Store) LogArtifact(ctx context.Context, runID string, artifact domain.Artifact) error {
	return s.mutate(runID, func(r *domain.Run) {
		r.Artifacts = append(r.Artifacts, artifact)
	})
}

// EndRun sets the terminal status and end time.
func (s *Store) EndRun(ctx context.Context, runID string, status domain.RunStatus, end time.Time) error {
	return s.mutate(runID, func(r *domain.Run) {
		r.Status = status
		r.EndTime = &end
	})
}

func (s *Store) mutate(runID string, fn func(*domain.Run)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return domain.ErrRunNotFound
	}
	if run.Status.Terminal() {
		return domain.ErrRunFinished
	}
	fn(run)
	return nil
}

// GetRun returns a copy so callers can't mutate store state through the pointer.
func (s *Store) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return copyRun(run), nil
}

// ListRuns returns the experiment's runs, newest first.
func (s *Store) ListRuns(ctx context.Context, experimentID string) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*domain.Run, 0)
	for _, r := range s.runs {
		if r.ExperimentID == experimentID {
			runs = append(runs, copyRun(r))
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	return runs, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func copyRun(r *domain.Run) *domain.Run {
	c := *r
	c.Params = make(map[string]string, len(r.Params))
	for k, v := range r.Params {
		c.Params[k] = v
	}
	c.Metrics = make(map[string]float64, len(r.Metrics))
	for k, v := range r.Metrics {
		c.Metrics[k] = v
	}
	c.Artifacts = append([]domain.Artifact(nil), r.Artifacts...)
	if r.EndTime != nil {
		end := *r.EndTime
		c.EndTime = &end
	}
	return &c
}
