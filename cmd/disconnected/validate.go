package main

import (
	"fmt"

	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the story for consistency",
	Long:  `Crawls every chapter from its start node and reports dead links, unreachable nodes and clues nothing can produce.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := content.Default()
		if err != nil {
			return err
		}

		report := validator.Check(b)
		out := cmd.OutOrStdout()
		for _, issue := range report.Issues {
			fmt.Fprintln(out, issue.String())
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(out, "Story is valid! %d warning(s).\n", len(report.Warnings()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
