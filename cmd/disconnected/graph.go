package main

import (
	"fmt"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/presentation/graph"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the story graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the story. With --overlay the
choices made in a save slot and its current node are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, _ := cmd.Flags().GetInt("chapter")
		slot, _ := cmd.Flags().GetString("overlay")

		if slot == "" {
			b, err := content.Default()
			if err != nil {
				return err
			}
			chapters, err := pick(b.Chapters, chapter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(chapters, nil))
			return nil
		}

		_, store, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		g, err := disconnected.New(disconnected.WithLogger(logger), disconnected.WithSlotStore(store))
		if err != nil {
			return err
		}
		defer g.Close()
		if _, err := g.Load(cmd.Context(), slot); err != nil {
			return fmt.Errorf("failed to load slot %q: %w", slot, err)
		}

		chapters, err := pick(g.Content().Chapters, chapter)
		if err != nil {
			return err
		}
		st := g.State().Game
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(chapters, graph.NewOverlay(st.Choices(), "")))
		return nil
	},
}

func pick(chapters []domain.Chapter, n int) ([]domain.Chapter, error) {
	if n == 0 {
		return chapters, nil
	}
	for _, ch := range chapters {
		if ch.Number == n {
			return []domain.Chapter{ch}, nil
		}
	}
	return nil, fmt.Errorf("no chapter %d", n)
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Int("chapter", 0, "Only render this chapter")
	graphCmd.Flags().String("overlay", "", "Highlight the path taken in this save slot")
}
