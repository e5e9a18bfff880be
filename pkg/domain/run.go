package domain

import "time"

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusFinished RunStatus = "FINISHED"
	RunStatusFailed   RunStatus = "FAILED"
)

// Terminal reports whether the run can no longer change.
func (s RunStatus) Terminal() bool {
	return s == RunStatusFinished || s == RunStatusFailed
}

// Experiment groups runs under a stable name.
type Experiment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Artifact references a file logged by a run.
type Artifact struct {
	// Path is relative to the run's artifact directory (e.g. "linear_model/model.json").
	Path string `json:"path"`
	// URI is where the artifact store actually put the bytes.
	URI  string `json:"uri"`
	Size int64  `json:"size"`
}

// Run is one recorded training execution.
type Run struct {
	ID           string             `json:"id"`
	ExperimentID string             `json:"experiment_id"`
	Status       RunStatus          `json:"status"`
	StartTime    time.Time          `json:"start_time"`
	EndTime      *time.Time         `json:"end_time,omitempty"`
	Params       map[string]string  `json:"params,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Artifacts    []Artifact         `json:"artifacts,omitempty"`
}

// NewRun creates a run in the RUNNING state.
func NewRun(id, experimentID string, start time.Time) *Run {
	return &Run{
		ID:           id,
		ExperimentID: experimentID,
		Status:       RunStatusRunning,
		StartTime:    start,
		Params:       make(map[string]string),
		Metrics:      make(map[string]float64),
	}
}
