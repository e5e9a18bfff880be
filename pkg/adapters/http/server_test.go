package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/regtrain/pkg/adapters/memory"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*memory.Store, *domain.Run) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	exp, err := store.GetOrCreateExperiment(ctx, "lab")
	require.NoError(t, err)

	run := domain.NewRun("run-1", exp.ID, time.Unix(1700000000, 0))
	require.NoError(t, store.CreateRun(ctx, run))
	require.NoError(t, store.LogMetric(ctx, run.ID, domain.MetricMSE, 0.25))
	require.NoError(t, store.EndRun(ctx, run.ID, domain.RunStatusFinished, time.Unix(1700000005, 0)))
	return store, run
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(memory.NewStore())

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler := NewHandler(memory.NewStore())

	req, _ := http.NewRequest("GET", "/info", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "regtrain-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, APIVersion, resp["api_version"])
}

func TestListRuns(t *testing.T) {
	store, run := seed(t)
	handler := NewHandler(store)

	req := httptest.NewRequest("GET", "/experiments/lab/runs", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp runsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "lab", resp.Experiment.Name)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, run.ID, resp.Runs[0].ID)
	assert.Equal(t, domain.RunStatusFinished, resp.Runs[0].Status)
	assert.InDelta(t, 0.25, resp.Runs[0].Metrics[domain.MetricMSE], 1e-12)
}

func TestGetRun(t *testing.T) {
	store, run := seed(t)
	handler := NewHandler(store)

	req := httptest.NewRequest("GET", "/runs/"+run.ID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var got domain.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
	assert.NotNil(t, got.EndTime)
}

func TestNotFound(t *testing.T) {
	handler := NewHandler(memory.NewStore())

	for _, path := range []string{"/runs/missing", "/experiments/missing/runs"} {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
}

func TestMetricsMountedOnlyWithRecorder(t *testing.T) {
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	NewHandler(memory.NewStore()).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rec := metrics.NewRecorder()
	rec.ObserveRun(domain.RunStatusFinished, time.Second)

	rr = httptest.NewRecorder()
	NewHandler(memory.NewStore(), WithMetrics(rec)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "regtrain_runs_total"))
}

func TestRequestsCountedByRoute(t *testing.T) {
	store, run := seed(t)
	rec := metrics.NewRecorder()
	handler := NewHandler(store, WithMetrics(rec))

	for _, path := range []string{"/runs/" + run.ID, "/runs/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body := rr.Body.String()
	assert.Contains(t, body, `regtrain_http_requests_total{code="200",route="/runs/{id}"} 1`)
	assert.Contains(t, body, `regtrain_http_requests_total{code="404",route="/runs/{id}"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest("OPTIONS", "/runs/x", nil)
	rr := httptest.NewRecorder()
	NewHandler(memory.NewStore()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
