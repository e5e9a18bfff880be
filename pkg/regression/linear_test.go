package regression_test

import (
	"math"
	"testing"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/regression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_PerfectLine(t *testing.T) {
	m, err := regression.Fit([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, m.Slope, 1e-9)
	assert.InDelta(t, 0.0, m.Intercept, 1e-9)

	mse := regression.MSE([]float64{2, 4, 6}, regression.Predict(m, []float64{1, 2, 3}))
	assert.InDelta(t, 0.0, mse, 1e-12)
}

func TestFit_NoisyData(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{1.1, 2.9, 5.2, 6.8, 9.1}

	m, err := regression.Fit(xs, ys)
	require.NoError(t, err)

	// Closed-form OLS for this data.
	assert.InDelta(t, 1.99, m.Slope, 1e-9)
	assert.InDelta(t, 1.04, m.Intercept, 1e-9)

	mse := regression.MSE(ys, regression.Predict(m, xs))
	assert.False(t, math.IsNaN(mse))
	assert.Greater(t, mse, 0.0)
}

func TestFit_ConstantFeature(t *testing.T) {
	m, err := regression.Fit([]float64{5, 5, 5}, []float64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.Slope)
	assert.InDelta(t, 2.0, m.Intercept, 1e-12)
}

func TestFit_SingleRow(t *testing.T) {
	m, err := regression.Fit([]float64{3}, []float64{7})
	require.NoError(t, err)
	assert.Equal(t, 7.0, m.Predict(100))
}

func TestFit_Errors(t *testing.T) {
	_, err := regression.Fit(nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)

	_, err = regression.Fit([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = regression.Fit([]float64{1, math.NaN()}, []float64{1, 2})
	assert.Error(t, err)
}

func TestMSE(t *testing.T) {
	assert.Equal(t, 0.0, regression.MSE(nil, nil))
	assert.InDelta(t, 2.5, regression.MSE([]float64{0, 0}, []float64{1, 2}), 1e-12)
}

func TestMarshal_RoundTrip(t *testing.T) {
	m := &domain.Model{Type: domain.ModelTypeLinear, Feature: "feature", Label: "label", Intercept: 0.5, Slope: 2}

	data, err := regression.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"slope": 2`)

	got, err := regression.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = regression.Unmarshal([]byte(`{"type":"tree"}`))
	assert.Error(t, err)
}
