package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/regtrain/internal/config"
	"github.com/aretw0/regtrain/pkg/adapters/file"
	"github.com/aretw0/regtrain/pkg/alert"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/aretw0/regtrain/pkg/persistence/middleware"
	"github.com/aretw0/regtrain/pkg/ports"
	"github.com/aretw0/regtrain/pkg/tracking"
	"github.com/aretw0/regtrain/pkg/trainer"
)

// createAlerter builds the failure notifier. It never touches the network until Notify.
func createAlerter(cfg config.Config, rec *metrics.Recorder, logger *slog.Logger, opts ...alert.Option) *alert.Alerter {
	base := []alert.Option{
		alert.WithLogger(logger),
		alert.WithMetrics(rec),
	}
	if cfg.EnvFile != "" {
		base = append(base, alert.WithEnvFiles(cfg.EnvFile))
	} else {
		base = append(base, alert.WithEnvFiles())
	}
	return alert.New(append(base, opts...)...)
}

// openStore resolves the tracking URI. The caller must Close the store.
func openStore(cfg config.Config) (ports.TrackingStore, error) {
	store, err := tracking.Open(cfg.TrackingURI)
	if err != nil {
		return nil, fmt.Errorf("error opening tracking store: %w", err)
	}
	return store, nil
}

// guardStore applies the store decorators used for training runs.
func guardStore(store ports.TrackingStore) ports.TrackingStore {
	return middleware.NewRedactMiddleware(middleware.DefaultSensitiveKeys)(store)
}

// createTrainer wires a trainer over an open store with the configured artifact root.
func createTrainer(cfg config.Config, store ports.TrackingStore, rec *metrics.Recorder, logger *slog.Logger) *trainer.Trainer {
	return trainer.New(
		trainer.Config{
			DatasetPath:   cfg.DatasetPath,
			Experiment:    cfg.Experiment,
			ModelArtifact: cfg.ModelArtifact,
			Params: map[string]string{
				"tracking_uri":  cfg.TrackingURI,
				"artifact_root": cfg.ArtifactRoot,
			},
		},
		store,
		file.New(cfg.ArtifactRoot),
		trainer.WithLogger(logger),
		trainer.WithMetrics(rec),
	)
}
