package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/regtrain"
	"github.com/aretw0/regtrain/internal/config"
	"github.com/aretw0/regtrain/internal/logging"
	"github.com/aretw0/regtrain/pkg/alert"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/aretw0/regtrain/pkg/trainer"
)

// TrainOptions contains everything the train command needs.
type TrainOptions struct {
	Config config.Config
	Out    io.Writer
	Logger *slog.Logger

	// AlertOptions are appended to the defaults, e.g. to replace the mail transport.
	AlertOptions []alert.Option
}

// Train runs one guarded training job. Opening the tracking store is part of
// the guarded work, so a bad tracking URI is reported and alerted like any other failure.
func Train(ctx context.Context, opts TrainOptions) (*trainer.Result, error) {
	cfg := opts.Config
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	rec := metrics.NewRecorder()

	job := regtrain.TrainerFunc(func(ctx context.Context) (*trainer.Result, error) {
		store, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := store.Close(); err != nil {
				opts.Logger.Warn("Failed to close tracking store", "error", err)
			}
		}()

		res, err := createTrainer(cfg, guardStore(store), rec, opts.Logger).Train(ctx)
		return res, withInterruption(ctx, err)
	})

	res, err := regtrain.Run(ctx, job,
		regtrain.WithNotifier(createAlerter(cfg, rec, opts.Logger, alertOptions(opts)...)),
		regtrain.WithSubject(cfg.AlertSubject),
		regtrain.WithOutput(opts.Out),
		regtrain.WithLogger(opts.Logger),
	)

	if cfg.MetricsFile != "" {
		if werr := rec.WriteTextfile(cfg.MetricsFile); werr != nil {
			opts.Logger.Warn("Failed to write metrics file", "path", cfg.MetricsFile, "error", werr)
		}
	}

	return res, err
}

// alertOptions sends the skip diagnostic to the same writer as the failure trace.
// Caller options come last so they can still replace it.
func alertOptions(opts TrainOptions) []alert.Option {
	return append([]alert.Option{alert.WithOutput(opts.Out)}, opts.AlertOptions...)
}
