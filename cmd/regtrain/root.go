package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/regtrain/internal/config"
	"github.com/aretw0/regtrain/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "regtrain",
	Short: "Train a linear regression model and track the run",
	Long: `regtrain fits a single-feature linear regression on a CSV dataset, records the
run (mse metric and model artifact) in a tracking store, and emails an alert when training fails.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Training failures were already printed with their trace by the guard.
		if !isTrainingFailure(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultFile, "YAML settings file (optional unless set explicitly)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("tracking-uri", "", "Tracking store URI (sqlite:///path, redis://host:port/db, memory://)")
	rootCmd.PersistentFlags().String("experiment", "", "Experiment name")
}

// loadConfig reads the YAML file and applies any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, err
	}

	overrides := map[string]*string{
		"tracking-uri":  &cfg.TrackingURI,
		"experiment":    &cfg.Experiment,
		"log-level":     &cfg.LogLevel,
		"data":          &cfg.DatasetPath,
		"artifact-root": &cfg.ArtifactRoot,
		"metrics-file":  &cfg.MetricsFile,
		"env-file":      &cfg.EnvFile,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON, _ = cmd.Flags().GetBool("log-json")
	}

	return cfg, cfg.Validate()
}

func createLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, cfg.LogJSON), nil
}
