package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/regtrain/internal/config"
	"github.com/aretw0/regtrain/internal/presentation/tui"
)

// ListRuns prints the runs of the configured experiment, newest first.
// Raw writes the markdown table without terminal styling.
func ListRuns(ctx context.Context, cfg config.Config, out io.Writer, raw bool, logger *slog.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close tracking store", "error", err)
		}
	}()

	exp, err := store.GetExperimentByName(ctx, cfg.Experiment)
	if err != nil {
		return fmt.Errorf("experiment %q: %w", cfg.Experiment, err)
	}
	runs, err := store.ListRuns(ctx, exp.ID)
	if err != nil {
		return fmt.Errorf("error listing runs: %w", err)
	}

	table := tui.RunsTable(exp, runs)
	if raw {
		_, err = io.WriteString(out, table)
		return err
	}

	rendered, err := tui.NewRenderer()(table)
	if err != nil {
		return fmt.Errorf("error rendering runs: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
