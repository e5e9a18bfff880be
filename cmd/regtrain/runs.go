package main

import (
	"github.com/aretw0/regtrain/internal/cli"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the runs of an experiment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := createLogger(cfg)
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")

		return cli.ListRuns(cmd.Context(), cfg, cmd.OutOrStdout(), raw, logger)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().Bool("raw", false, "Print the markdown table without terminal styling")
}
