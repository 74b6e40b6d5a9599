package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/evanofslack/domain-sync/internal/diff"
	"github.com/evanofslack/domain-sync/internal/domain"
	"github.com/evanofslack/domain-sync/internal/metrics"
)

// ErrCycleInProgress is returned when a reconciliation is requested for a
// provider whose previous cycle has not finished.
var ErrCycleInProgress = errors.New("reconciliation cycle already in progress for provider")

// Ingester fetches a provider's full domain list, normalizes it, and
// upserts every record into storage as a side effect, returning the
// canonical post snapshot. Storage reflects the latest fetch even when the
// rest of the cycle fails.
type Ingester interface {
	Provider() string
	IngestDomains(ctx context.Context) ([]domain.Record, error)
}

// Store is the slice of storage the engine needs.
type Store interface {
	DomainsByProvider(ctx context.Context, provider string) ([]domain.Record, error)
	InsertNotification(ctx context.Context, domainName, event, message string) (domain.Notification, error)
}

type Engine interface {
	Reconcile(ctx context.Context, ingester Ingester) ([]domain.Notification, error)
}

type engine struct {
	store   Store
	metrics *metrics.Metrics

	mu      sync.Mutex
	running map[string]bool
}

func NewEngine(store Store, metrics *metrics.Metrics) *engine {
	return &engine{
		store:   store,
		metrics: metrics,
		running: make(map[string]bool),
	}
}

// Reconcile drives one fetch, diff, persist, notify cycle for one provider
// and returns the notifications it created. A fetch or storage failure
// aborts the cycle; records already upserted by the ingester remain. At most
// one cycle runs per provider at a time.
func (e *engine) Reconcile(ctx context.Context, ingester Ingester) ([]domain.Notification, error) {
	provider := ingester.Provider()

	if !e.begin(provider) {
		return nil, fmt.Errorf("%w: %s", ErrCycleInProgress, provider)
	}
	defer e.end(provider)

	start := time.Now()
	defer func() {
		e.metrics.SetSyncDuration(time.Since(start))
	}()

	pre, err := e.store.DomainsByProvider(ctx, provider)
	if err != nil {
		e.metrics.IncSyncRun(provider, false)
		return nil, fmt.Errorf("load stored snapshot: %w", err)
	}

	post, err := ingester.IngestDomains(ctx)
	if err != nil {
		e.metrics.IncSyncRun(provider, false)
		return nil, fmt.Errorf("ingest domains from %s: %w", provider, err)
	}
	e.metrics.SetDomainsTracked(provider, len(post))

	result, err := diff.Diff(pre, post)
	if err != nil {
		e.metrics.IncSyncRun(provider, false)
		return nil, fmt.Errorf("diff snapshots: %w", err)
	}
	slog.Debug("Snapshot comparison",
		"provider", provider,
		"additions", len(result.Additions),
		"deletions", len(result.Deletions),
		"changes", len(result.Changes))

	notifications := []domain.Notification{}

	for _, name := range result.Deletions {
		slog.Info("Domain deleted", "provider", provider, "domain", name)
		n, err := e.store.InsertNotification(ctx, name, domain.EventDelete, "Domain deleted")
		if err != nil {
			e.metrics.IncSyncRun(provider, false)
			return notifications, fmt.Errorf("persist delete notification: %w", err)
		}
		e.metrics.IncNotification(domain.EventDelete)
		notifications = append(notifications, n)
	}

	for _, rec := range result.Additions {
		slog.Info("New domain detected", "provider", provider, "domain", rec.Name)
		n, err := e.store.InsertNotification(ctx, rec.Name, domain.EventAdd, "New domain detected")
		if err != nil {
			e.metrics.IncSyncRun(provider, false)
			return notifications, fmt.Errorf("persist add notification: %w", err)
		}
		e.metrics.IncNotification(domain.EventAdd)
		notifications = append(notifications, n)
	}

	for _, change := range result.Changes {
		human := diff.Format(change.Fields)
		slog.Info("Domain changed", "provider", provider, "domain", change.Record.Name, "diff", human)
		n, err := e.store.InsertNotification(ctx, change.Record.Name, domain.EventChange, human)
		if err != nil {
			e.metrics.IncSyncRun(provider, false)
			return notifications, fmt.Errorf("persist change notification: %w", err)
		}
		e.metrics.IncNotification(domain.EventChange)
		notifications = append(notifications, n)
	}

	e.metrics.IncSyncRun(provider, true)
	return notifications, nil
}

func (e *engine) begin(provider string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[provider] {
		return false
	}
	e.running[provider] = true
	return true
}

func (e *engine) end(provider string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, provider)
}
