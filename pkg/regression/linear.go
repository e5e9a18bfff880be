package regression

import (
	"encoding/json"
	"math"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Fit regresses labels on features with ordinary least squares.
// A constant feature column has no unique solution; the minimum-norm one
// (slope 0, intercept = mean label) is returned instead.
func Fit(features, labels []float64) (*domain.Model, error) {
	if len(features) != len(labels) {
		return nil, errors.Errorf("feature/label length mismatch: %d != %d", len(features), len(labels))
	}
	if len(features) == 0 {
		return nil, errors.WithStack(domain.ErrEmptyDataset)
	}
	for i := range features {
		if isNonFinite(features[i]) || isNonFinite(labels[i]) {
			return nil, errors.Errorf("row %d: non-finite value", i)
		}
	}

	m := &domain.Model{
		Type:    domain.ModelTypeLinear,
		Feature: domain.FeatureColumn,
		Label:   domain.LabelColumn,
	}

	if stat.Variance(features, nil) == 0 || len(features) == 1 {
		m.Intercept = stat.Mean(labels, nil)
		return m, nil
	}

	m.Intercept, m.Slope = stat.LinearRegression(features, labels, nil, false)
	return m, nil
}

// Predict evaluates the model for every x.
func Predict(m *domain.Model, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}

// MSE is the mean of squared residuals. It returns 0 for empty input.
func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

// Marshal serializes a model for the artifact store.
func Marshal(m *domain.Model) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal model")
	}
	return data, nil
}

// Unmarshal restores a model written by Marshal.
func Unmarshal(data []byte) (*domain.Model, error) {
	var m domain.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal model")
	}
	if m.Type != domain.ModelTypeLinear {
		return nil, errors.Errorf("unsupported model type %q", m.Type)
	}
	return &m, nil
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
