package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/disconnected/internal/app"
	"github.com/aretw0/disconnected/internal/config"
	"github.com/aretw0/disconnected/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "disconnected",
	Short: "Disconnected is a narrative hacking game played in a terminal",
	Long: `Disconnected follows ECHO through five chapters of terminals, chats and
mini-games. Run 'disconnected play' to start, or serve the game over HTTP or MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level to stderr")
	rootCmd.PersistentFlags().String("store", "", "Save backend: memory, file, redis or sqlite (overrides DISCONNECTED_STORE)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file to load before reading the environment")
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store = store
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	return cfg, logging.New(level), nil
}

// openStore loads configuration and opens the slot store it names.
func openStore(cmd *cobra.Command) (config.Config, *app.Store, *slog.Logger, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	store, err := app.OpenStore(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	return cfg, store, logger, nil
}
