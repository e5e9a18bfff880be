package ports

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTrackingStoreContract runs a suite of tests to verify that a TrackingStore implementation
// adheres to the defined interface contract.
func RunTrackingStoreContract(t *testing.T, store TrackingStore) {
	ctx := context.Background()
	expName := "contract-" + time.Now().Format("20060102150405")

	t.Run("GetOrCreateExperiment is idempotent", func(t *testing.T) {
		first, err := store.GetOrCreateExperiment(ctx, expName)
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)
		assert.Equal(t, expName, first.Name)

		second, err := store.GetOrCreateExperiment(ctx, expName)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		byName, err := store.GetExperimentByName(ctx, expName)
		require.NoError(t, err)
		assert.Equal(t, first.ID, byName.ID)
	})

	t.Run("Unknown experiment", func(t *testing.T) {
		_, err := store.GetExperimentByName(ctx, "missing-"+expName)
		assert.ErrorIs(t, err, domain.ErrExperimentNotFound)
	})

	t.Run("Run lifecycle", func(t *testing.T) {
		exp, err := store.GetOrCreateExperiment(ctx, expName)
		require.NoError(t, err)

		start := time.Now().UTC().Truncate(time.Millisecond)
		run := domain.NewRun(uuid.NewString(), exp.ID, start)
		require.NoError(t, store.CreateRun(ctx, run))

		require.NoError(t, store.LogParam(ctx, run.ID, "rows", "3"))
		require.NoError(t, store.LogMetric(ctx, run.ID, domain.MetricMSE, 0.25))
		require.NoError(t, store.LogArtifact(ctx, run.ID, domain.Artifact{
			Path: "linear_model/model.json",
			URI:  "file:///tmp/model.json",
			Size: 42,
		}))

		loaded, err := store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusRunning, loaded.Status)
		assert.Equal(t, exp.ID, loaded.ExperimentID)
		assert.Equal(t, "3", loaded.Params["rows"])
		assert.InDelta(t, 0.25, loaded.Metrics[domain.MetricMSE], 1e-12)
		require.Len(t, loaded.Artifacts, 1)
		assert.Equal(t, "linear_model/model.json", loaded.Artifacts[0].Path)
		assert.Equal(t, int64(42), loaded.Artifacts[0].Size)
		assert.True(t, start.Equal(loaded.StartTime), "start time %v != %v", loaded.StartTime, start)
		assert.Nil(t, loaded.EndTime)

		end := start.Add(time.Second)
		require.NoError(t, store.EndRun(ctx, run.ID, domain.RunStatusFinished, end))

		loaded, err = store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusFinished, loaded.Status)
		require.NotNil(t, loaded.EndTime)
		assert.True(t, end.Equal(*loaded.EndTime))

		assert.ErrorIs(t, store.LogMetric(ctx, run.ID, "late", 1), domain.ErrRunFinished)
		assert.ErrorIs(t, store.EndRun(ctx, run.ID, domain.RunStatusFailed, end), domain.ErrRunFinished)
	})

	t.Run("Metric values survive storage", func(t *testing.T) {
		exp, err := store.GetOrCreateExperiment(ctx, expName)
		require.NoError(t, err)

		run := domain.NewRun(uuid.NewString(), exp.ID, time.Now().UTC())
		require.NoError(t, store.CreateRun(ctx, run))
		require.NoError(t, store.LogMetric(ctx, run.ID, domain.MetricMSE, 1.0/3.0))

		loaded, err := store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.0/3.0, loaded.Metrics[domain.MetricMSE])
		assert.False(t, math.IsNaN(loaded.Metrics[domain.MetricMSE]))
	})

	t.Run("Unknown run", func(t *testing.T) {
		id := uuid.NewString()
		_, err := store.GetRun(ctx, id)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
		assert.ErrorIs(t, store.LogMetric(ctx, id, domain.MetricMSE, 1), domain.ErrRunNotFound)
		assert.ErrorIs(t, store.EndRun(ctx, id, domain.RunStatusFailed, time.Now()), domain.ErrRunNotFound)
	})

	t.Run("CreateRun requires experiment", func(t *testing.T) {
		run := domain.NewRun(uuid.NewString(), "no-such-experiment", time.Now().UTC())
		assert.ErrorIs(t, store.CreateRun(ctx, run), domain.ErrExperimentNotFound)
	})

	t.Run("ListRuns newest first", func(t *testing.T) {
		exp, err := store.GetOrCreateExperiment(ctx, expName+"-list")
		require.NoError(t, err)

		base := time.Now().UTC().Truncate(time.Millisecond)
		older := domain.NewRun(uuid.NewString(), exp.ID, base)
		newer := domain.NewRun(uuid.NewString(), exp.ID, base.Add(time.Minute))
		require.NoError(t, store.CreateRun(ctx, older))
		require.NoError(t, store.CreateRun(ctx, newer))

		runs, err := store.ListRuns(ctx, exp.ID)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, newer.ID, runs[0].ID)
		assert.Equal(t, older.ID, runs[1].ID)
	})
}
