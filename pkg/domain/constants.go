package domain

const (
	// FeatureColumn is the normalized name of the input column.
	FeatureColumn = "feature"
	// LabelColumn is the normalized name of the target column.
	LabelColumn = "label"

	// MetricMSE is the metric key recorded for every successful run.
	MetricMSE = "mse"

	// DefaultExperimentName is used when no experiment is configured.
	DefaultExperimentName = "DevOps-MLOps-Lab"
	// DefaultModelArtifact is the artifact directory the fitted model is logged under.
	DefaultModelArtifact = "linear_model"
)

// RequiredColumns returns the columns every dataset must carry after normalization.
func RequiredColumns() []string {
	return []string{FeatureColumn, LabelColumn}
}
