package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/disconnected"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of disconnected",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "disconnected version %s\n", strings.TrimSpace(disconnected.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
