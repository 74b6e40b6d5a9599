package domain

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Providers encode the same attributes differently: booleans arrive as
// native bools, 0/1 numbers, or numeric/"true" strings, and timestamps in
// either the provider-local "2006-01-02 15:04:05" layout or RFC3339. The
// helpers here are the single place that bridges those encodings; both the
// provider normalizers and the change formatter go through them.

const providerTimeLayout = "2006-01-02 15:04:05"

// CoerceBool interprets a decoded JSON value as a boolean. Native booleans
// pass through, numbers are true when nonzero, strings are true when they
// case-insensitively equal "true" or parse to a nonzero number. Anything
// else, including absence, is false.
func CoerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		if strings.EqualFold(val, "true") {
			return true
		}
		var n float64
		if _, err := fmt.Sscanf(val, "%g", &n); err == nil {
			return n != 0
		}
		return false
	default:
		return false
	}
}

// OptionalBool maps an absent or nil value to unknown, anything else through
// CoerceBool.
func OptionalBool(v any) *bool {
	if v == nil {
		return nil
	}
	b := CoerceBool(v)
	return &b
}

// ParseTime parses a provider timestamp, accepting RFC3339 and the
// provider-local "2006-01-02 15:04:05" layout.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(providerTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// OptionalTime parses a provider timestamp, mapping empty or unparseable
// input to unknown. A parse failure is logged, never fatal.
func OptionalTime(s, field string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := ParseTime(s)
	if err != nil {
		slog.Warn("Failed to parse provider timestamp", "field", field, "value", s, "error", err)
		return nil
	}
	return &t
}
