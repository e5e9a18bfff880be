// Package trainer fits a linear model on a dataset and records the run in a tracking store.
package trainer

import (
	"context"
	"log/slog"
	"path"
	"strconv"
	"time"

	"github.com/aretw0/regtrain/pkg/dataset"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/aretw0/regtrain/pkg/ports"
	"github.com/aretw0/regtrain/pkg/regression"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Config is passed explicitly to every Trainer; there is no process-wide tracking state.
type Config struct {
	DatasetPath   string
	Experiment    string
	ModelArtifact string

	// Params are recorded on every run next to the dataset path and row count.
	Params map[string]string
}

// Result describes a successful training run.
type Result struct {
	Experiment *domain.Experiment
	Run        *domain.Run
	Model      *domain.Model
	MSE        float64
	Rows       int
}

// Trainer runs one training job per Train call.
type Trainer struct {
	cfg       Config
	store     ports.TrackingStore
	artifacts ports.ArtifactStore
	logger    *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	newID     func() string
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WithMetrics records run outcomes.
func WithMetrics(m *metrics.Recorder) Option {
	return func(t *Trainer) {
		t.metrics = m
	}
}

// WithClock overrides time.Now, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(t *Trainer) {
		t.now = now
	}
}

// New creates a Trainer. Empty Experiment and ModelArtifact fall back to the defaults.
func New(cfg Config, store ports.TrackingStore, artifacts ports.ArtifactStore, opts ...Option) *Trainer {
	if cfg.Experiment == "" {
		cfg.Experiment = domain.DefaultExperimentName
	}
	if cfg.ModelArtifact == "" {
		cfg.ModelArtifact = domain.DefaultModelArtifact
	}

	t := &Trainer{
		cfg:       cfg,
		store:     store,
		artifacts: artifacts,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Train loads and validates the dataset, then fits, scores and logs under a new run.
// Dataset errors (I/O, *domain.ValidationError) are returned before any run is recorded.
// Errors after the run starts mark it FAILED.
func (t *Trainer) Train(ctx context.Context) (*Result, error) {
	started := t.now()

	ds, err := dataset.Load(t.cfg.DatasetPath)
	if err != nil {
		t.metrics.ObserveRun(domain.RunStatusFailed, t.now().Sub(started))
		return nil, err
	}
	t.logger.Debug("dataset loaded", "path", ds.Source, "rows", ds.Len(), "columns", ds.Columns)

	exp, err := t.store.GetOrCreateExperiment(ctx, t.cfg.Experiment)
	if err != nil {
		t.metrics.ObserveRun(domain.RunStatusFailed, t.now().Sub(started))
		return nil, errors.Wrapf(err, "failed to set experiment %q", t.cfg.Experiment)
	}

	run := domain.NewRun(t.newID(), exp.ID, started.UTC())
	for k, v := range t.cfg.Params {
		run.Params[k] = v
	}
	run.Params["dataset"] = t.cfg.DatasetPath
	run.Params["rows"] = strconv.Itoa(ds.Len())
	if err := t.store.CreateRun(ctx, run); err != nil {
		t.metrics.ObserveRun(domain.RunStatusFailed, t.now().Sub(started))
		return nil, errors.Wrap(err, "failed to start run")
	}
	logger := t.logger.With("experiment", exp.Name, "run_id", run.ID)
	logger.Info("run started")

	res, err := t.fitAndLog(ctx, exp, run, ds)
	status := domain.RunStatusFinished
	if err != nil {
		status = domain.RunStatusFailed
	}

	end := t.now()
	if endErr := t.store.EndRun(ctx, run.ID, status, end.UTC()); endErr != nil {
		if err == nil {
			err = errors.Wrap(endErr, "failed to end run")
		} else {
			logger.Error("failed to mark run as failed", "error", endErr)
		}
	}
	t.metrics.ObserveRun(status, end.Sub(started))

	if err != nil {
		logger.Error("run failed", "error", err)
		return nil, err
	}

	t.metrics.ObserveMSE(exp.Name, res.MSE)
	logger.Info("run finished", "mse", res.MSE, "slope", res.Model.Slope, "intercept", res.Model.Intercept)

	final, err := t.store.GetRun(ctx, run.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload run")
	}
	res.Run = final
	return res, nil
}

func (t *Trainer) fitAndLog(ctx context.Context, exp *domain.Experiment, run *domain.Run, ds *domain.Dataset) (*Result, error) {
	model, err := regression.Fit(ds.Features, ds.Labels)
	if err != nil {
		return nil, err
	}
	mse := regression.MSE(ds.Labels, regression.Predict(model, ds.Features))

	if err := t.store.LogMetric(ctx, run.ID, domain.MetricMSE, mse); err != nil {
		return nil, errors.Wrap(err, "failed to log metric")
	}

	data, err := regression.Marshal(model)
	if err != nil {
		return nil, err
	}
	artifact, err := t.artifacts.Put(ctx, exp.ID, run.ID, path.Join(t.cfg.ModelArtifact, "model.json"), data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store model artifact")
	}
	if err := t.store.LogArtifact(ctx, run.ID, artifact); err != nil {
		return nil, errors.Wrap(err, "failed to log model artifact")
	}

	return &Result{
		Experiment: exp,
		Model:      model,
		MSE:        mse,
		Rows:       ds.Len(),
	}, nil
}
