package domain

import (
	"time"
)

// Record is the canonical shape of a registered domain, regardless of which
// provider it came from. A record is uniquely identified by (Name, Provider).
//
// Optional provider attributes are pointers so that "unknown" survives the
// round trip through storage instead of collapsing to a zero value. Metadata
// holds the full raw provider object for change detection beyond the
// canonical fields.
type Record struct {
	Name         string         `json:"name"`
	Provider     string         `json:"provider"`
	ExternalID   string         `json:"external_id"`
	ExpiresAt    *time.Time     `json:"ext_expiry_at"`
	RegisteredAt *time.Time     `json:"ext_registered_at"`
	AutoRenew    *bool          `json:"ext_auto_renew"`
	WhoisPrivacy *bool          `json:"ext_whois_privacy"`
	Metadata     map[string]any `json:"metadata"`

	// Store-managed, excluded from diffing.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notification is a persisted change event produced by a reconciliation
// cycle. Rows are append-only.
type Notification struct {
	ID        uint64    `json:"id"`
	Domain    string    `json:"domain"`
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification event kinds.
const (
	EventAdd    = "add"
	EventDelete = "delete"
	EventChange = "change"
)

// TLDPrice is a registration price for one TLD at one provider, in cents.
type TLDPrice struct {
	Provider  string    `json:"provider"`
	TLD       string    `json:"tld"`
	Cents     int64     `json:"cents"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status digs the domain status out of metadata. Porkbun reports it as
// "status", Cloudflare as "last_known_status".
func (r Record) Status() string {
	if r.Metadata == nil {
		return ""
	}
	if s, ok := r.Metadata["status"].(string); ok {
		return s
	}
	if s, ok := r.Metadata["last_known_status"].(string); ok {
		return s
	}
	return ""
}
