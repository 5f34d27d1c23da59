package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	httpx "github.com/Spok95/matbase/internal/infra/http"
	"github.com/Spok95/matbase/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health, metrics and the read-only JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			opts := httpx.Options{Addr: cfg.HTTP.Addr, Log: log}
			if cfg.Metrics.Enabled {
				opts.Gatherer = prometheus.DefaultGatherer
			}
			srv := httpx.New(s, opts)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			log.Info("HTTP server started", "addr", cfg.HTTP.Addr, "metrics", cfg.Metrics.Enabled)

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					log.Error("http server error", "err", err)
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			log.Info("graceful shutdown complete")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
