package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Manage save slots",
	Long:  `List and remove save slots in the configured store.`,
}

var savesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List save slots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		slots, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list saves: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(slots) == 0 {
			fmt.Fprintln(out, "No saves found.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SLOT\tNAME\tCHAPTER\tPLAY TIME\tSAVED")
		for _, s := range slots {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				s.ID, s.Name, s.Chapter,
				time.Duration(s.PlayTime)*time.Second,
				time.UnixMilli(s.Timestamp).Format(time.DateTime))
		}
		return tw.Flush()
	},
}

var savesDeleteCmd = &cobra.Command{
	Use:     "delete <slot>...",
	Aliases: []string{"rm"},
	Short:   "Remove one or more save slots",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		var failed int
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed save '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d slot(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(savesCmd)
	savesCmd.AddCommand(savesListCmd, savesDeleteCmd)
}
