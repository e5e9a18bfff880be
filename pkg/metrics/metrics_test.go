package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := metrics.NewRecorder()

	r.ObserveRun(domain.RunStatusFinished, time.Second)
	r.ObserveRun(domain.RunStatusFailed, 2*time.Second)
	r.ObserveRun(domain.RunStatusFinished, time.Second)
	r.ObserveMSE("lab", 0.5)
	r.ObserveAlert(metrics.AlertSkipped)

	count, err := testutil.GatherAndCount(r.Registry(), "regtrain_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count) // two label sets

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()+"/"+m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["regtrain_runs_total/FINISHED"])
	assert.Equal(t, 1.0, values["regtrain_runs_total/FAILED"])
	assert.Equal(t, 1.0, values["regtrain_alerts_total/skipped"])
	assert.Equal(t, 0.5, values["regtrain_last_mse"])
}

func TestRecorder_Nil(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.ObserveRun(domain.RunStatusFinished, time.Second)
		r.ObserveMSE("lab", 1)
		r.ObserveAlert(metrics.AlertSent)
	})
	assert.NoError(t, r.WriteTextfile("ignored"))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := metrics.NewRecorder()
	r.ObserveRun(domain.RunStatusFinished, time.Millisecond)

	path := filepath.Join(t.TempDir(), "regtrain.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `regtrain_runs_total{status="FINISHED"} 1`)
}
