package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/disconnected/internal/app"
	"github.com/aretw0/disconnected/internal/cli"
	httpAdapter "github.com/aretw0/disconnected/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Hosts live game sessions behind a JSON API. With the redis store,
sessions take a distributed lock so several servers can share saves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		port := cfg.HTTPPort
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		m, err := app.NewMetrics()
		if err != nil {
			return err
		}
		sessions := app.NewSessions(store, app.GameOptions(cfg, store, logger), m, logger)
		defer sessions.Close()

		srv := &http.Server{
			Addr: fmt.Sprintf(":%d", port),
			Handler: httpAdapter.NewHandler(sessions,
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMetrics(m.Handler()),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr, "store", cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-sigCtx.Done():
			logger.Info("shutting down", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides DISCONNECTED_HTTP_PORT)")
}
