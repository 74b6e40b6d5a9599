package diff

import (
	"strings"
	"testing"
)

func TestFormatAutoRenew(t *testing.T) {
	changes := ChangeSet{
		"ext_auto_renew": {Old: false, New: true},
	}

	got := Format(changes)
	want := " - Auto Renew Changed: false => true"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatAutoRenewCoercion(t *testing.T) {
	// Providers deliver the flag as 0/1 strings as well as native booleans.
	changes := ChangeSet{
		"ext_auto_renew": {Old: "0", New: "1"},
	}

	got := Format(changes)
	if !strings.Contains(got, "Auto Renew Changed: false => true") {
		t.Errorf("expected coerced rendering, got %q", got)
	}
}

func TestFormatMetadataStatus(t *testing.T) {
	changes := ChangeSet{
		"metadata": {
			Old: map[string]any{"status": "0"},
			New: map[string]any{"status": "1"},
		},
	}

	got := Format(changes)
	want := " - Status Changed: false => true"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatMetadataSecurityLock(t *testing.T) {
	changes := ChangeSet{
		"metadata": {
			Old: map[string]any{"security_lock": true},
			New: map[string]any{"security_lock": "0"},
		},
	}

	got := Format(changes)
	want := " - Security Lock Changed: true => false"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatMetadataGenericSubKey(t *testing.T) {
	changes := ChangeSet{
		"metadata": {
			Old: map[string]any{"registrar": "old llc"},
			New: map[string]any{"registrar": "new llc"},
		},
	}

	got := Format(changes)
	want := ` - registrar: ("old llc", "new llc")`
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatMetadataOneSidedSubKey(t *testing.T) {
	changes := ChangeSet{
		"metadata": {
			Old: map[string]any{},
			New: map[string]any{"tld": "com"},
		},
	}

	got := Format(changes)
	want := ` - tld: (null, "com")`
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatMetadataUnchangedSubKeysSkipped(t *testing.T) {
	changes := ChangeSet{
		"metadata": {
			Old: map[string]any{"status": "1", "tld": "com"},
			New: map[string]any{"status": "0", "tld": "com"},
		},
	}

	got := Format(changes)
	if strings.Contains(got, "tld") {
		t.Errorf("unchanged sub-key rendered: %q", got)
	}
	if !strings.Contains(got, "Status Changed: true => false") {
		t.Errorf("expected status line, got %q", got)
	}
}

func TestFormatGenericField(t *testing.T) {
	changes := ChangeSet{
		"ext_expiry_at": {Old: "2026-03-12T06:59:09Z", New: "2027-03-12T06:59:09Z"},
	}

	got := Format(changes)
	want := ` - ext_expiry_at: ("2026-03-12T06:59:09Z", "2027-03-12T06:59:09Z")`
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatNonObjectMetadataFallsBack(t *testing.T) {
	changes := ChangeSet{
		"metadata": {Old: nil, New: map[string]any{"status": "1"}},
	}

	got := Format(changes)
	want := ` - metadata: (null, {"status":"1"})`
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatMultipleFields(t *testing.T) {
	changes := ChangeSet{
		"ext_auto_renew": {Old: true, New: false},
		"external_id":    {Old: "abc", New: "def"},
	}

	got := Format(changes)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
		t.Errorf("expected trimmed output, got %q", got)
	}
}

func TestFormatDeterministic(t *testing.T) {
	changes := ChangeSet{
		"ext_auto_renew": {Old: true, New: false},
		"metadata": {
			Old: map[string]any{"status": "1", "security_lock": "1", "tld": "com"},
			New: map[string]any{"status": "0", "security_lock": "0", "tld": "sh"},
		},
	}

	first := Format(changes)
	for i := 0; i < 10; i++ {
		if got := Format(changes); got != first {
			t.Fatalf("Format() not deterministic:\n%q\n%q", first, got)
		}
	}
}
