package whois

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	raw := `Domain Name: example.sh
Registrar: Porkbun LLC
Registry Expiry Date: 2025-12-27T00:24:43Z
>>> Last update of WHOIS database: 2025-04-16T07:27:49Z <<<
For more information on Whois status codes, please visit https://icann.org/epp
`

	got := truncate(raw)
	if strings.Contains(got, "Last update of WHOIS database") {
		t.Errorf("banner not stripped: %q", got)
	}
	if !strings.Contains(got, "Registry Expiry Date: 2025-12-27T00:24:43Z") {
		t.Errorf("data lost during truncation: %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("expected trimmed output, got %q", got)
	}
}

func TestTruncateNoMarker(t *testing.T) {
	raw := "Domain Name: example.sh\n"
	if got := truncate(raw); got != "Domain Name: example.sh" {
		t.Errorf("truncate without marker = %q", got)
	}
}

func TestResultString(t *testing.T) {
	r := Result{Domain: "example.sh", Raw: "Domain Name: example.sh"}
	got := r.String()
	if !strings.Contains(got, "Whois Lookup for: example.sh") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "Domain Name: example.sh") {
		t.Errorf("missing body: %q", got)
	}
}
