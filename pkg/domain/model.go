package domain

// Model is a fitted ordinary least squares line: label = Intercept + Slope*feature.
type Model struct {
	Type      string  `json:"type"`
	Feature   string  `json:"feature"`
	Label     string  `json:"label"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// ModelTypeLinear identifies the serialized model flavour.
const ModelTypeLinear = "linear_regression"

// Predict evaluates the model at x.
func (m *Model) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}
