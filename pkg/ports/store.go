package ports

import (
	"context"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
)

// TrackingStore defines the interface for recording training runs.
// Stores are append-only from the trainer's point of view: runs are created,
// enriched while RUNNING, and then ended exactly once.
type TrackingStore interface {
	// GetOrCreateExperiment returns the experiment with the given name, creating it if needed.
	GetOrCreateExperiment(ctx context.Context, name string) (*domain.Experiment, error)

	// GetExperimentByName returns domain.ErrExperimentNotFound if the name is unknown.
	GetExperimentByName(ctx context.Context, name string) (*domain.Experiment, error)

	// CreateRun records a new run. The run must reference an existing experiment.
	CreateRun(ctx context.Context, run *domain.Run) error

	// LogParam, LogMetric and LogArtifact return domain.ErrRunNotFound for unknown runs
	// and domain.ErrRunFinished once the run has ended.
	LogParam(ctx context.Context, runID, key, value string) error
	LogMetric(ctx context.Context, runID, key string, value float64) error
	LogArtifact(ctx context.Context, runID string, artifact domain.Artifact) error

	// EndRun moves a run to a terminal status.
	EndRun(ctx context.Context, runID string, status domain.RunStatus, end time.Time) error

	// GetRun returns domain.ErrRunNotFound if the run does not exist.
	GetRun(ctx context.Context, runID string) (*domain.Run, error)

	// ListRuns returns the runs of an experiment, newest first.
	ListRuns(ctx context.Context, experimentID string) ([]*domain.Run, error)

	// Close releases the underlying connection or file handle.
	Close() error
}

// ArtifactStore persists artifact content for a run.
type ArtifactStore interface {
	// Put writes data at path (relative to the run's artifact directory).
	Put(ctx context.Context, experimentID, runID, path string, data []byte) (domain.Artifact, error)

	// Get reads back an artifact written by Put.
	Get(ctx context.Context, experimentID, runID, path string) ([]byte, error)
}
