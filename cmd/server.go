package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evanofslack/domain-sync/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the sync loop and HTTP server",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.cfg.Server.Addr, a.store, a.metrics)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	if a.cfg.Metrics.Enabled {
		go func() {
			slog.Info("Starting metrics server", "address", a.cfg.Metrics.Addr)
			if err := http.ListenAndServe(a.cfg.Metrics.Addr, a.metrics.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	runSyncLoop(ctx, a)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down HTTP server", "error", err)
	}
	slog.Info("Shutdown complete")
	return nil
}

// runSyncLoop syncs every configured provider immediately, then again on
// every poll interval tick until the context is cancelled.
func runSyncLoop(ctx context.Context, a *app) {
	slog.Info("Starting sync loop", "interval", a.cfg.PollInterval)
	syncAll(ctx, a)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping sync loop")
			return
		case <-ticker.C:
			syncAll(ctx, a)
		}
	}
}

func syncAll(ctx context.Context, a *app) {
	for _, ingester := range a.ingesters() {
		a.syncProvider(ctx, ingester)
	}
	if a.porkbun != nil && a.cfg.Porkbun.Pricing.Enabled {
		if err := a.porkbun.IngestTLDPrices(ctx); err != nil {
			slog.Error("Failed to ingest TLD prices", "error", err)
		}
	}
}
