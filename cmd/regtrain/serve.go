package main

import (
	"fmt"
	"net"

	"github.com/aretw0/regtrain/internal/cli"
	"github.com/aretw0/regtrain/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recorded runs over HTTP",
	Long:  `Exposes the tracking store as a read-only JSON API with Prometheus metrics.`,
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
		port, _ := cmd.Flags().GetString("port")

		ln, err := net.Listen("tcp", ":"+port)
		if err != nil {
			return fmt.Errorf("error listening on port %s: %w", port, err)
		}

		tui.PrintBanner(cmd.OutOrStdout())

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.Serve(ctx, cfg, ln, cmd.OutOrStdout(), logger); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Server stopped", "signal", sig)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
