package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/regtrain/pkg/adapters/sqlite"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements TrackingStore
var _ ports.TrackingStore = (*sqlite.Store)(nil)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "mlflow.db"))
	require.NoError(t, err)
	defer store.Close()

	ports.RunTrackingStoreContract(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mlflow.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)

	exp, err := store.GetOrCreateExperiment(ctx, "DevOps-MLOps-Lab")
	require.NoError(t, err)

	run := domain.NewRun("run-1", exp.ID, time.Now())
	run.Params["rows"] = "3"
	require.NoError(t, store.CreateRun(ctx, run))
	require.NoError(t, store.LogMetric(ctx, run.ID, domain.MetricMSE, 0))
	require.NoError(t, store.EndRun(ctx, run.ID, domain.RunStatusFinished, time.Now()))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	again, err := reopened.GetOrCreateExperiment(ctx, "DevOps-MLOps-Lab")
	require.NoError(t, err)
	assert.Equal(t, exp.ID, again.ID)

	runs, err := reopened.ListRuns(ctx, exp.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusFinished, runs[0].Status)
	assert.Equal(t, "3", runs[0].Params["rows"])
	assert.Contains(t, runs[0].Metrics, domain.MetricMSE)
}

func TestSQLiteStore_EmptyPath(t *testing.T) {
	_, err := sqlite.Open("")
	assert.Error(t, err)
}
