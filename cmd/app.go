package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evanofslack/domain-sync/internal/config"
	"github.com/evanofslack/domain-sync/internal/logger"
	"github.com/evanofslack/domain-sync/internal/metrics"
	"github.com/evanofslack/domain-sync/internal/notify"
	"github.com/evanofslack/domain-sync/internal/provider/cloudflare"
	"github.com/evanofslack/domain-sync/internal/provider/porkbun"
	"github.com/evanofslack/domain-sync/internal/reconcile"
	"github.com/evanofslack/domain-sync/internal/storage"
)

// app holds the wired-up pieces shared by the server and index commands.
// Providers and notification transports are only constructed when the
// config carries credentials for them.
type app struct {
	cfg        *config.Config
	metrics    *metrics.Metrics
	store      storage.Store
	engine     reconcile.Engine
	porkbun    *porkbun.Client
	cloudflare *cloudflare.Client
	senders    []notify.Sender
}

func newApp(registerMetrics bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Env)

	m := metrics.New(registerMetrics)

	store, err := storage.New(cfg.StatePath, m)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	a := &app{
		cfg:     cfg,
		metrics: m,
		store:   store,
		engine:  reconcile.NewEngine(store, m),
	}

	if cfg.Porkbun.Configured() {
		a.porkbun, err = porkbun.New(cfg.Porkbun, store, m)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create porkbun client: %w", err)
		}
	}
	if cfg.Cloudflare.Configured() {
		a.cloudflare, err = cloudflare.New(cfg.Cloudflare, store, m)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create cloudflare client: %w", err)
		}
	}

	if cfg.Ntfy.Configured() {
		a.senders = append(a.senders, notify.NewNtfy(cfg.Ntfy))
	}
	if cfg.Telegram.Configured() {
		a.senders = append(a.senders, notify.NewTelegram(cfg.Telegram))
	}

	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Error("Failed to close state store", "error", err)
	}
}

func (a *app) ingesters() []reconcile.Ingester {
	var ingesters []reconcile.Ingester
	if a.porkbun != nil {
		ingesters = append(ingesters, a.porkbun)
	}
	if a.cloudflare != nil {
		ingesters = append(ingesters, a.cloudflare)
	}
	return ingesters
}

// syncProvider runs one reconciliation cycle and dispatches whatever
// notifications it produced to every configured transport.
func (a *app) syncProvider(ctx context.Context, ingester reconcile.Ingester) {
	provider := ingester.Provider()

	notifications, err := a.engine.Reconcile(ctx, ingester)
	if errors.Is(err, reconcile.ErrCycleInProgress) {
		slog.Warn("Skipping sync, previous cycle still running", "provider", provider)
		return
	}
	if err != nil {
		slog.Error("Sync failed", "provider", provider, "error", err)
		return
	}
	if len(notifications) == 0 {
		slog.Debug("No changes detected", "provider", provider)
		return
	}

	if len(a.senders) == 0 {
		slog.Info("No notification transports configured, skipping dispatch", "provider", provider, "notifications", len(notifications))
		return
	}
	for _, sender := range a.senders {
		if err := sender.Send(ctx, notifications); err != nil {
			slog.Error("Failed to send notifications", "transport", sender.Name(), "error", err)
		}
	}
}
