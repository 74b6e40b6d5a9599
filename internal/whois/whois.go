package whois

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// everything after this marker is registry boilerplate
const updateMarker = ">>> Last update of WHOIS database:"

// Result holds one whois lookup.
type Result struct {
	Domain string
	Raw    string
}

// Lookup queries the responsible whois server for a domain.
func Lookup(domainName string) (Result, error) {
	raw, err := whois.Whois(domainName)
	if err != nil {
		return Result{}, fmt.Errorf("whois lookup %s: %w", domainName, err)
	}
	return Result{Domain: domainName, Raw: truncate(raw)}, nil
}

// truncate strips the trailing database-update banner and everything after
// it.
func truncate(raw string) string {
	if idx := strings.Index(raw, updateMarker); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Whois Lookup for: %s\n", r.Domain)
	b.WriteString("--- Whois Data ---\n")
	b.WriteString(r.Raw)
	return b.String()
}

// JSON parses the raw response into structured fields and renders them as
// indented JSON.
func (r Result) JSON() (string, error) {
	parsed, err := whoisparser.Parse(r.Raw)
	if err != nil {
		return "", fmt.Errorf("parse whois response for %s: %w", r.Domain, err)
	}
	data, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
