package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrExperimentNotFound is returned when an experiment name or ID is unknown to the store.
var ErrExperimentNotFound = errors.New("experiment not found")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrRunFinished is returned when a terminal run is mutated.
var ErrRunFinished = errors.New("run already finished")

// ErrEmptyDataset is returned when a dataset has a valid header but no rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// ValidationError reports a dataset whose normalized header lacks required columns.
type ValidationError struct {
	Required []string
	Actual   []string
}

// NewValidationError builds a ValidationError with sorted copies of both column sets.
func NewValidationError(required, actual []string) *ValidationError {
	r := append([]string(nil), required...)
	a := append([]string(nil), actual...)
	sort.Strings(r)
	sort.Strings(a)
	return &ValidationError{Required: r, Actual: a}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dataset must contain columns %v, got %v (missing %v)", e.Required, e.Actual, e.Missing())
}

// Missing returns the required columns absent from Actual.
func (e *ValidationError) Missing() []string {
	have := make(map[string]bool, len(e.Actual))
	for _, c := range e.Actual {
		have[c] = true
	}
	var missing []string
	for _, c := range e.Required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
