package domain

import (
	"testing"
	"time"
)

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"native true", true, true},
		{"native false", false, false},
		{"number one", float64(1), true},
		{"number zero", float64(0), false},
		{"string one", "1", true},
		{"string zero", "0", false},
		{"string true", "true", true},
		{"string true mixed case", "True", true},
		{"string false", "false", false},
		{"arbitrary string", "yes", false},
		{"nil", nil, false},
		{"object", map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceBool(tt.input); got != tt.want {
				t.Errorf("CoerceBool(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptionalBool(t *testing.T) {
	if got := OptionalBool(nil); got != nil {
		t.Errorf("OptionalBool(nil) = %v, want nil", *got)
	}
	if got := OptionalBool("1"); got == nil || *got != true {
		t.Errorf("OptionalBool(\"1\") = %v, want true", got)
	}
	if got := OptionalBool(false); got == nil || *got != false {
		t.Errorf("OptionalBool(false) = %v, want false", got)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "rfc3339",
			input: "2026-04-16T23:59:59.000Z",
			want:  time.Date(2026, 4, 16, 23, 59, 59, 0, time.UTC),
		},
		{
			name:  "provider local",
			input: "2026-03-12 06:59:09",
			want:  time.Date(2026, 3, 12, 6, 59, 9, 0, time.UTC),
		},
		{
			name:    "garbage",
			input:   "next tuesday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTime(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTime(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptionalTime(t *testing.T) {
	if got := OptionalTime("", "expiry"); got != nil {
		t.Errorf("OptionalTime(\"\") = %v, want nil", got)
	}
	if got := OptionalTime("not a date", "expiry"); got != nil {
		t.Errorf("OptionalTime(invalid) = %v, want nil", got)
	}
	if got := OptionalTime("2025-04-16 03:49:07", "registered"); got == nil {
		t.Error("OptionalTime(valid) = nil, want value")
	}
}

func TestRecordStatus(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{"no metadata", Record{}, ""},
		{"porkbun status", Record{Metadata: map[string]any{"status": "ACTIVE"}}, "ACTIVE"},
		{"cloudflare status", Record{Metadata: map[string]any{"last_known_status": "registrationActive"}}, "registrationActive"},
		{"status wins", Record{Metadata: map[string]any{"status": "ACTIVE", "last_known_status": "other"}}, "ACTIVE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}
