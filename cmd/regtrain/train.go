package main

import (
	"errors"

	"github.com/aretw0/regtrain/internal/cli"
	"github.com/spf13/cobra"
)

// errTrainingFailed marks errors the guard has already reported.
type errTrainingFailed struct {
	err error
}

func (e *errTrainingFailed) Error() string { return e.err.Error() }
func (e *errTrainingFailed) Unwrap() error { return e.err }

func isTrainingFailure(err error) bool {
	var tf *errTrainingFailed
	return errors.As(err, &tf)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the model once and record the run",
	Long: `Loads the dataset, fits ordinary least squares, logs the mse metric and the model artifact,
and exits non-zero on failure after printing the error and sending the email alert.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := createLogger(cfg)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err = cli.Train(ctx, cli.TrainOptions{
			Config: cfg,
			Out:    cmd.OutOrStdout(),
			Logger: logger,
		})
		if sig := ctx.Signal(); sig != nil {
			logger.Warn("Training interrupted", "signal", sig)
		}
		if err != nil {
			return &errTrainingFailed{err: err}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("data", "", "Path to the CSV dataset (default data/dataset.csv)")
	trainCmd.Flags().String("artifact-root", "", "Directory for run artifacts (default mlruns)")
	trainCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile after training")
	trainCmd.Flags().String("env-file", "", "Dotenv file with EMAIL_* settings (default .env)")

	// Training is what the tool is for; make it the default.
	rootCmd.Flags().AddFlagSet(trainCmd.Flags())
	rootCmd.RunE = trainCmd.RunE
}
