package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"humanTime": humanTime,
	"exactTime": exactTime,
	"boolText":  boolText,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>domain-sync</title>
<style>
body { font-family: monospace; margin: 2rem; background: #fafafa; color: #222; }
h1 { font-size: 1.2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #ddd; }
th { background: #eee; }
a { color: #2a6; }
</style>
</head>
<body>
<h1>domain-sync</h1>
<p><a href="/api/domains">domains</a> &middot; <a href="/api/notifications">notifications</a> &middot; <a href="/domains.ics">calendar</a> &middot; <a href="/metrics">metrics</a></p>
<table>
<tr><th>Name</th><th>Provider</th><th>Status</th><th>Expires</th><th>Registered</th><th>Auto Renew</th></tr>
{{range .}}
<tr>
<td>{{.Name}}</td>
<td>{{.Provider}}</td>
<td>{{.Status}}</td>
<td title="{{exactTime .ExpiresAt}}">{{humanTime .ExpiresAt}}</td>
<td title="{{exactTime .RegisteredAt}}">{{humanTime .RegisteredAt}}</td>
<td>{{boolText .AutoRenew}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`

func humanTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return humanize.Time(*t)
}

func exactTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func boolText(b *bool) string {
	if b == nil {
		return "-"
	}
	if *b {
		return "Yes"
	}
	return "No"
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.AllDomains(r.Context())
	if err != nil {
		slog.Error("Failed to load domains", "error", err)
		http.Error(w, "failed to load domains", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, domains); err != nil {
		slog.Error("Failed to render page", "error", err)
	}
}
