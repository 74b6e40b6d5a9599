package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanofslack/domain-sync/internal/domain"
	"github.com/evanofslack/domain-sync/internal/metrics"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "badger-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "badger"), metrics.New(false))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertDomainDeterminism(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	autoRenew := true
	rec := domain.Record{
		Name:       "a.com",
		Provider:   "porkbun",
		ExternalID: "a.com",
		AutoRenew:  &autoRenew,
		Metadata:   map[string]any{"status": "ACTIVE"},
	}

	first, err := store.UpsertDomain(ctx, rec)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Error("expected store-managed timestamps to be set")
	}

	time.Sleep(10 * time.Millisecond)

	second, err := store.UpsertDomain(ctx, rec)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, err := store.DomainsByProvider(ctx, "porkbun")
	if err != nil {
		t.Fatalf("find by provider: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored record after double upsert, got %d", len(stored))
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed across upserts: %v != %v", second.CreatedAt, first.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v <= %v", second.UpdatedAt, first.UpdatedAt)
	}
	if stored[0].Name != "a.com" || stored[0].Provider != "porkbun" {
		t.Errorf("unexpected stored record %+v", stored[0])
	}
	if stored[0].AutoRenew == nil || *stored[0].AutoRenew != true {
		t.Errorf("auto renew flag lost in round trip: %+v", stored[0])
	}
}

func TestDomainsByProviderScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []domain.Record{
		{Name: "a.com", Provider: "porkbun"},
		{Name: "b.com", Provider: "porkbun"},
		{Name: "a.com", Provider: "cloudflare"},
	} {
		if _, err := store.UpsertDomain(ctx, rec); err != nil {
			t.Fatalf("upsert %s/%s: %v", rec.Provider, rec.Name, err)
		}
	}

	porkbun, err := store.DomainsByProvider(ctx, "porkbun")
	if err != nil {
		t.Fatalf("find porkbun: %v", err)
	}
	if len(porkbun) != 2 {
		t.Errorf("expected 2 porkbun records, got %d", len(porkbun))
	}

	cloudflare, err := store.DomainsByProvider(ctx, "cloudflare")
	if err != nil {
		t.Fatalf("find cloudflare: %v", err)
	}
	if len(cloudflare) != 1 || cloudflare[0].Name != "a.com" {
		t.Errorf("expected single cloudflare a.com, got %+v", cloudflare)
	}

	all, err := store.AllDomains(ctx)
	if err != nil {
		t.Fatalf("all domains: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records total, got %d", len(all))
	}
}

func TestInsertNotification(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.InsertNotification(ctx, "a.com", domain.EventAdd, "New domain detected")
	if err != nil {
		t.Fatalf("insert notification: %v", err)
	}
	second, err := store.InsertNotification(ctx, "b.com", domain.EventDelete, "Domain deleted")
	if err != nil {
		t.Fatalf("insert notification: %v", err)
	}

	if second.ID <= first.ID {
		t.Errorf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}

	notifications, err := store.Notifications(ctx)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	if notifications[0].Domain != "a.com" || notifications[0].Event != domain.EventAdd {
		t.Errorf("unexpected first notification %+v", notifications[0])
	}
	if notifications[0].Message != "New domain detected" {
		t.Errorf("unexpected message %q", notifications[0].Message)
	}
}

func TestTLDPrices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertTLDPrice(ctx, domain.TLDPrice{Provider: "porkbun", TLD: "com", Cents: 1134}); err != nil {
		t.Fatalf("upsert price: %v", err)
	}
	// Same TLD again, price moved.
	if err := store.UpsertTLDPrice(ctx, domain.TLDPrice{Provider: "porkbun", TLD: "com", Cents: 1201}); err != nil {
		t.Fatalf("upsert price: %v", err)
	}
	if err := store.UpsertTLDPrice(ctx, domain.TLDPrice{Provider: "porkbun", TLD: "sh", Cents: 4550}); err != nil {
		t.Fatalf("upsert price: %v", err)
	}

	prices, err := store.TLDPrices(ctx, "porkbun")
	if err != nil {
		t.Fatalf("list prices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(prices))
	}
	byTLD := map[string]int64{}
	for _, p := range prices {
		byTLD[p.TLD] = p.Cents
	}
	if byTLD["com"] != 1201 || byTLD["sh"] != 4550 {
		t.Errorf("unexpected prices %+v", byTLD)
	}
}
