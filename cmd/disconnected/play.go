package main

import (
	"fmt"
	"os"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/internal/app"
	"github.com/aretw0/disconnected/internal/cli"
	"github.com/aretw0/disconnected/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Starts a new game, or resumes one with --slot. Lines typed at the shell
prompt go to ECHO's terminal; lines starting with ':' drive the story.
Type :help once in game.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		slot, _ := cmd.Flags().GetString("slot")
		noColor, _ := cmd.Flags().GetBool("no-color")
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		color := interactive && !noColor

		opts := app.GameOptions(cfg, store, logger)
		if interactive {
			opts = append(opts, disconnected.WithTransitionDelay(disconnected.DefaultTransitionDelay))
		}
		g, err := disconnected.New(opts...)
		if err != nil {
			return err
		}
		defer g.Close()

		profile := termenv.Ascii
		if color {
			profile = termenv.EnvColorProfile()
		}
		tui.PrintBanner(cmd.OutOrStdout(), profile)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		if slot != "" {
			if _, err := g.Load(sigCtx, slot); err != nil {
				return fmt.Errorf("failed to load slot %q: %w", slot, err)
			}
		} else if err := g.Start(sigCtx); err != nil {
			return err
		}

		return cli.Play(sigCtx, g, cli.Options{
			In:         cmd.InOrStdin(),
			Out:        cmd.OutOrStdout(),
			Color:      color,
			Typewriter: interactive,
			Logger:     logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("slot", "", "Resume from this save slot")
	playCmd.Flags().Bool("no-color", false, "Disable colors and styling")
	rootCmd.RunE = playCmd.RunE
}
