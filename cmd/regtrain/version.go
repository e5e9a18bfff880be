package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/regtrain"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of regtrain",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "regtrain version %s\n", strings.TrimSpace(regtrain.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
