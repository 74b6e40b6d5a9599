package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/libdns/libdns"

	"github.com/evanofslack/domain-sync/internal/config"
	"github.com/evanofslack/domain-sync/internal/domain"
	"github.com/evanofslack/domain-sync/internal/metrics"
)

const providerName = "cloudflare"

// Store is the slice of storage the cloudflare client writes to while
// ingesting.
type Store interface {
	UpsertDomain(ctx context.Context, rec domain.Record) (domain.Record, error)
}

type Client struct {
	api     *cloudflare.API
	store   Store
	metrics *metrics.Metrics
}

func New(cfg config.Cloudflare, store Store, metrics *metrics.Metrics, opts ...cloudflare.Option) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("cloudflare API token required")
	}

	api, err := cloudflare.NewWithAPIToken(cfg.APIToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudflare client: %w", err)
	}

	return &Client{api: api, store: store, metrics: metrics}, nil
}

func (c *Client) Provider() string { return providerName }

// IngestDomains walks every account visible to the token, fetches its
// registrar domains through the raw endpoint so the full provider object
// survives as metadata, normalizes each entry, and upserts it into storage.
func (c *Client) IngestDomains(ctx context.Context) ([]domain.Record, error) {
	accounts, _, err := c.api.Accounts(ctx, cloudflare.AccountsListParams{})
	c.metrics.IncProviderRequest(providerName, "read", err == nil)
	if err != nil {
		return nil, fmt.Errorf("cloudflare list accounts: %w", err)
	}

	records := []domain.Record{}

	for _, account := range accounts {
		// Registrar domain listing is a POST in the Cloudflare API.
		raw, err := c.api.Raw(ctx, http.MethodPost, fmt.Sprintf("/accounts/%s/registrar/domains", account.ID), nil, nil)
		c.metrics.IncProviderRequest(providerName, "read", err == nil)
		if err != nil {
			return nil, fmt.Errorf("cloudflare list registrar domains for account %s: %w", account.ID, err)
		}

		var entries []map[string]any
		if err := json.Unmarshal(raw.Result, &entries); err != nil {
			return nil, fmt.Errorf("parse cloudflare registrar domains: %w", err)
		}

		for _, entry := range entries {
			entry["account_id"] = account.ID
			entry["account_name"] = account.Name

			rec := normalize(entry)
			if rec.Name == "" {
				slog.Warn("Skipping cloudflare domain without name", "account", account.ID)
				continue
			}

			stored, err := c.store.UpsertDomain(ctx, rec)
			if err != nil {
				return nil, fmt.Errorf("store cloudflare domain %s: %w", rec.Name, err)
			}
			slog.Debug("Cloudflare domain ingested", "domain", stored.Name, "account", account.Name)
			records = append(records, stored)
		}
	}

	slog.Info("Completed cloudflare domain ingestion", "count", len(records))
	return records, nil
}

// normalize shapes a raw registrar domain into the canonical record.
// Cloudflare sends RFC3339 timestamps and native booleans. The raw object,
// with the owning account stitched in, is kept as metadata.
func normalize(raw map[string]any) domain.Record {
	name, _ := raw["name"].(string)

	return domain.Record{
		Name:         name,
		Provider:     providerName,
		ExternalID:   name,
		ExpiresAt:    domain.OptionalTime(stringField(raw, "expires_at"), "expires_at"),
		RegisteredAt: domain.OptionalTime(stringField(raw, "registered_at"), "registered_at"),
		AutoRenew:    domain.OptionalBool(raw["auto_renew"]),
		WhoisPrivacy: domain.OptionalBool(raw["privacy"]),
		Metadata:     raw,
	}
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// DNSRecords lists the DNS records of every zone visible to the token as
// canonical resource records.
func (c *Client) DNSRecords(ctx context.Context) ([]libdns.RR, error) {
	zones, err := c.api.ListZones(ctx)
	c.metrics.IncProviderRequest(providerName, "read", err == nil)
	if err != nil {
		return nil, fmt.Errorf("cloudflare list zones: %w", err)
	}

	var result []libdns.RR

	for _, zone := range zones {
		page := 1
		for {
			rc := cloudflare.ZoneIdentifier(zone.ID)
			params := cloudflare.ListDNSRecordsParams{
				ResultInfo: cloudflare.ResultInfo{
					Page:    page,
					PerPage: 100,
				},
			}

			records, resultInfo, err := c.api.ListDNSRecords(ctx, rc, params)
			c.metrics.IncProviderRequest(providerName, "read", err == nil)
			if err != nil {
				return nil, fmt.Errorf("cloudflare list dns records for zone %s: %w", zone.Name, err)
			}

			for _, r := range records {
				result = append(result, libdns.RR{
					Name: r.Name,
					Type: r.Type,
					Data: r.Content,
					TTL:  time.Duration(r.TTL) * time.Second,
				})
			}

			if page >= resultInfo.TotalPages {
				break
			}
			page++
		}
	}

	slog.Debug("Retrieved cloudflare dns records", "count", len(result))
	return result, nil
}
