package porkbun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/libdns/libdns"

	"github.com/evanofslack/domain-sync/internal/config"
	"github.com/evanofslack/domain-sync/internal/domain"
	"github.com/evanofslack/domain-sync/internal/metrics"
)

const (
	providerName   = "porkbun"
	defaultBaseURL = "https://api.porkbun.com/api/json/v3"

	// listAll returns at most this many domains per page.
	pageSize = 1000
)

// Store is the slice of storage the porkbun client writes to while
// ingesting.
type Store interface {
	UpsertDomain(ctx context.Context, rec domain.Record) (domain.Record, error)
	UpsertTLDPrice(ctx context.Context, price domain.TLDPrice) error
}

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL   string
	apiKey    string
	secretKey string
	store     Store
	metrics   *metrics.Metrics
	http      Httper
}

func New(cfg config.Porkbun, store Store, metrics *metrics.Metrics) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("porkbun api key and secret key required")
	}
	return &Client{
		baseURL:   defaultBaseURL,
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
		store:     store,
		metrics:   metrics,
		http:      &http.Client{},
	}, nil
}

func (c *Client) Provider() string { return providerName }

type pingResponse struct {
	Status string `json:"status"`
	YourIP string `json:"yourIp"`
}

// Ping verifies the configured credentials against the live API.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var resp pingResponse
	err := c.post(ctx, "/ping", nil, &resp)
	c.metrics.IncProviderRequest(providerName, "read", err == nil)
	if err != nil {
		return "", fmt.Errorf("porkbun ping: %w", err)
	}
	return resp.YourIP, nil
}

type listAllResponse struct {
	Status  string           `json:"status"`
	Domains []map[string]any `json:"domains"`
}

// IngestDomains fetches every domain in the account, normalizes each entry,
// and upserts it into storage, returning the canonical records as stored.
func (c *Client) IngestDomains(ctx context.Context) ([]domain.Record, error) {
	records := []domain.Record{}
	start := 0

	for {
		var resp listAllResponse
		err := c.post(ctx, "/domain/listAll", map[string]any{"start": strconv.Itoa(start)}, &resp)
		c.metrics.IncProviderRequest(providerName, "read", err == nil)
		if err != nil {
			return nil, fmt.Errorf("porkbun list domains: %w", err)
		}

		for _, raw := range resp.Domains {
			rec := normalize(raw)
			if rec.Name == "" {
				slog.Warn("Skipping porkbun domain without name", "raw", raw)
				continue
			}

			stored, err := c.store.UpsertDomain(ctx, rec)
			if err != nil {
				return nil, fmt.Errorf("store porkbun domain %s: %w", rec.Name, err)
			}
			slog.Debug("Porkbun domain ingested", "domain", stored.Name)
			records = append(records, stored)
		}

		if len(resp.Domains) < pageSize {
			break
		}
		start += pageSize
	}

	slog.Info("Completed porkbun domain ingestion", "count", len(records))
	return records, nil
}

// normalize shapes a raw listAll entry into the canonical record. Porkbun
// encodes booleans as "0"/"1" strings and timestamps in its local
// "2006-01-02 15:04:05" layout. The full raw object is kept as metadata.
func normalize(raw map[string]any) domain.Record {
	name, _ := raw["domain"].(string)

	return domain.Record{
		Name:         name,
		Provider:     providerName,
		ExternalID:   name,
		ExpiresAt:    domain.OptionalTime(stringField(raw, "expireDate"), "expireDate"),
		RegisteredAt: domain.OptionalTime(stringField(raw, "createDate"), "createDate"),
		AutoRenew:    domain.OptionalBool(raw["autoRenew"]),
		WhoisPrivacy: domain.OptionalBool(raw["whoisPrivacy"]),
		Metadata:     raw,
	}
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

type dnsRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl"`
}

type dnsRetrieveResponse struct {
	Status  string      `json:"status"`
	Records []dnsRecord `json:"records"`
}

// DNSRecords lists the DNS records of the given domains as canonical
// resource records. Porkbun retrieves records per domain.
func (c *Client) DNSRecords(ctx context.Context, domains []string) ([]libdns.RR, error) {
	var result []libdns.RR

	for _, name := range domains {
		var resp dnsRetrieveResponse
		err := c.post(ctx, "/dns/retrieve/"+name, nil, &resp)
		c.metrics.IncProviderRequest(providerName, "read", err == nil)
		if err != nil {
			return nil, fmt.Errorf("porkbun retrieve dns for %s: %w", name, err)
		}

		for _, r := range resp.Records {
			ttl, err := strconv.Atoi(r.TTL)
			if err != nil {
				slog.Warn("Skipping dns record with unparseable ttl", "domain", name, "ttl", r.TTL)
				continue
			}
			result = append(result, libdns.RR{
				Name: r.Name,
				Type: r.Type,
				Data: r.Content,
				TTL:  time.Duration(ttl) * time.Second,
			})
		}
	}

	slog.Debug("Retrieved porkbun dns records", "count", len(result))
	return result, nil
}

type tldPrice struct {
	Registration string `json:"registration"`
	Renewal      string `json:"renewal"`
	Transfer     string `json:"transfer"`
}

type pricingResponse struct {
	Status  string              `json:"status"`
	Pricing map[string]tldPrice `json:"pricing"`
}

// IngestTLDPrices fetches registration pricing for every supported TLD and
// stores it in cents. Slow endpoint, independent of reconciliation.
func (c *Client) IngestTLDPrices(ctx context.Context) error {
	slog.Info("Ingesting porkbun tld prices")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pricing/get", nil)
	if err != nil {
		return err
	}

	var resp pricingResponse
	err = c.do(req, &resp)
	c.metrics.IncProviderRequest(providerName, "read", err == nil)
	if err != nil {
		return fmt.Errorf("porkbun pricing: %w", err)
	}

	for tld, price := range resp.Pricing {
		dollars, err := strconv.ParseFloat(price.Registration, 64)
		if err != nil {
			slog.Warn("Skipping unparseable tld price", "tld", tld, "price", price.Registration, "error", err)
			continue
		}
		cents := int64(math.Round(dollars * 100))

		err = c.store.UpsertTLDPrice(ctx, domain.TLDPrice{
			Provider: providerName,
			TLD:      tld,
			Cents:    cents,
		})
		if err != nil {
			return fmt.Errorf("store tld price %s: %w", tld, err)
		}
	}

	slog.Info("Completed porkbun tld price ingestion", "count", len(resp.Pricing))
	return nil
}

// post sends an authenticated request. Porkbun takes credentials in the
// JSON body of every call.
func (c *Client) post(ctx context.Context, path string, extra map[string]any, out any) error {
	body := map[string]any{
		"apikey":       c.apiKey,
		"secretapikey": c.secretKey,
	}
	for k, v := range extra {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("porkbun api request, status=%d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read porkbun response: %w", err)
	}

	var probe struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parse porkbun response: %w", err)
	}
	if probe.Status != "SUCCESS" {
		return fmt.Errorf("porkbun api error: %s %s", probe.Status, probe.Message)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse porkbun response: %w", err)
	}
	return nil
}
