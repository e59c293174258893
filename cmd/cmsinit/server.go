package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lingua/cmsinit/internal/orchestrator"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the cmsinit HTTP API server",
	Long: `Start the HTTP server on the configured port (default :8081).

POST /api/v1/bootstrap starts a bootstrap run in the background; with
server.bootstrap_on_start one run starts as soon as the server is up.
The server shuts down cleanly on SIGTERM or SIGINT.`,
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer app.shutdownTelemetry()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("cmsinit server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if cfg.Server.BootstrapOnStart {
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(gctx, cfg.Bootstrap.Timeout)
			defer cancel()
			// A failed run is reported through /ready and GET /api/v1/bootstrap;
			// it does not stop the server.
			result, err := app.orchestrator.RunBootstrap(bctx)
			switch {
			case errors.Is(err, orchestrator.ErrBootstrapInProgress):
				slog.Info("startup bootstrap skipped, a run is already in progress")
			case err != nil:
				slog.Warn("startup bootstrap failed", "err", err)
			case result.Status == orchestrator.StatusError:
				slog.Warn("startup bootstrap completed with errors", "err", result.Err())
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped cleanly")
	return nil
}
