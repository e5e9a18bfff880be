package trainer_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/regtrain/internal/testutils"
	"github.com/aretw0/regtrain/pkg/adapters/file"
	"github.com/aretw0/regtrain/pkg/adapters/memory"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/aretw0/regtrain/pkg/regression"
	"github.com/aretw0/regtrain/pkg/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrain_PerfectLine(t *testing.T) {
	path := testutils.WriteDataset(t, "feature,label\n1,2\n2,4\n3,6\n")
	store := memory.NewStore()
	artifacts := file.New(t.TempDir())

	tr := trainer.New(trainer.Config{DatasetPath: path}, store, artifacts)
	res, err := tr.Train(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Model.Slope, 1e-9)
	assert.InDelta(t, 0.0, res.Model.Intercept, 1e-9)
	assert.InDelta(t, 0.0, res.MSE, 1e-12)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, domain.DefaultExperimentName, res.Experiment.Name)

	// The run is recorded, finished, and carries the metric and the model.
	assert.Equal(t, domain.RunStatusFinished, res.Run.Status)
	assert.NotNil(t, res.Run.EndTime)
	assert.Contains(t, res.Run.Metrics, domain.MetricMSE)
	assert.Equal(t, "3", res.Run.Params["rows"])
	require.Len(t, res.Run.Artifacts, 1)
	assert.Equal(t, "linear_model/model.json", res.Run.Artifacts[0].Path)

	data, err := artifacts.Get(context.Background(), res.Experiment.ID, res.Run.ID, "linear_model/model.json")
	require.NoError(t, err)
	model, err := regression.Unmarshal(data)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, model.Slope, 1e-9)
}

func TestTrain_HeaderCaseAndWhitespace(t *testing.T) {
	path := testutils.WriteDataset(t, "  Feature , Label\n0,1\n1,2\n2,2\n3,5\n")

	tr := trainer.New(trainer.Config{DatasetPath: path}, memory.NewStore(), file.New(t.TempDir()))
	res, err := tr.Train(context.Background())
	require.NoError(t, err)

	assert.False(t, math.IsNaN(res.MSE) || math.IsInf(res.MSE, 0))
	assert.GreaterOrEqual(t, res.MSE, 0.0)
}

func TestTrain_MissingColumnsRecordsNoRun(t *testing.T) {
	path := testutils.WriteDataset(t, "X,Y\n1,2\n")
	store := memory.NewStore()
	rec := metrics.NewRecorder()

	tr := trainer.New(trainer.Config{DatasetPath: path, Experiment: "lab"}, store, file.New(t.TempDir()), trainer.WithMetrics(rec))
	_, err := tr.Train(context.Background())

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, []string{"feature", "label"}, verr.Required)
	assert.Equal(t, []string{"x", "y"}, verr.Actual)

	_, err = store.GetExperimentByName(context.Background(), "lab")
	assert.ErrorIs(t, err, domain.ErrExperimentNotFound, "no experiment or run may be created")
}

func TestTrain_MissingFile(t *testing.T) {
	store := memory.NewStore()
	tr := trainer.New(trainer.Config{DatasetPath: filepath.Join(t.TempDir(), "missing.csv")}, store, file.New(t.TempDir()))

	_, err := tr.Train(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type failingArtifacts struct{}

func (failingArtifacts) Put(ctx context.Context, experimentID, runID, path string, data []byte) (domain.Artifact, error) {
	return domain.Artifact{}, errors.New("disk full")
}

func (failingArtifacts) Get(ctx context.Context, experimentID, runID, path string) ([]byte, error) {
	return nil, errors.New("not found")
}

func TestTrain_FailureAfterStartMarksRunFailed(t *testing.T) {
	path := testutils.WriteDataset(t, "feature,label\n1,2\n2,4\n")
	store := memory.NewStore()

	tr := trainer.New(trainer.Config{DatasetPath: path, Experiment: "lab"}, store, failingArtifacts{})
	_, err := tr.Train(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	exp, err := store.GetExperimentByName(context.Background(), "lab")
	require.NoError(t, err)
	runs, err := store.ListRuns(context.Background(), exp.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
	assert.NotNil(t, runs[0].EndTime)
}

func TestTrain_EachInvocationCreatesRun(t *testing.T) {
	path := testutils.WriteDataset(t, "feature,label\n1,2\n2,4\n")
	store := memory.NewStore()
	tr := trainer.New(trainer.Config{DatasetPath: path, Experiment: "lab"}, store, file.New(t.TempDir()))

	first, err := tr.Train(context.Background())
	require.NoError(t, err)
	second, err := tr.Train(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.Run.ID, second.Run.ID)
	assert.Equal(t, first.Experiment.ID, second.Experiment.ID)

	runs, err := store.ListRuns(context.Background(), first.Experiment.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
