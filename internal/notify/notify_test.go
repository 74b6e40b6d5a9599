package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evanofslack/domain-sync/internal/config"
	"github.com/evanofslack/domain-sync/internal/domain"
)

func TestEventTitle(t *testing.T) {
	tests := []struct {
		event string
		count int
		want  string
	}{
		{domain.EventAdd, 1, "New Domain"},
		{domain.EventAdd, 3, "New Domains"},
		{domain.EventDelete, 1, "Domain Deleted"},
		{domain.EventDelete, 2, "Domains Deleted"},
		{domain.EventChange, 1, "Domain Changed"},
		{domain.EventChange, 2, "Domains Changed"},
		{"bogus", 1, "Unknown"},
	}

	for _, tt := range tests {
		if got := eventTitle(tt.event, tt.count); got != tt.want {
			t.Errorf("eventTitle(%q, %d) = %q, want %q", tt.event, tt.count, got, tt.want)
		}
	}
}

func TestGroupByEvent(t *testing.T) {
	notifications := []domain.Notification{
		{Domain: "a.com", Event: domain.EventAdd},
		{Domain: "b.com", Event: domain.EventAdd},
		{Domain: "c.com", Event: domain.EventDelete},
	}

	groups := groupByEvent(notifications)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[domain.EventAdd]) != 2 || len(groups[domain.EventDelete]) != 1 {
		t.Errorf("unexpected grouping %+v", groups)
	}
}

func TestNtfyBody(t *testing.T) {
	adds := []domain.Notification{
		{Domain: "a.com", Event: domain.EventAdd, Message: "New domain detected"},
		{Domain: "b.com", Event: domain.EventAdd, Message: "New domain detected"},
	}
	got := ntfyBody(domain.EventAdd, adds)
	want := "`a.com`\n`b.com`"
	if got != want {
		t.Errorf("ntfyBody(add) = %q, want %q", got, want)
	}

	changes := []domain.Notification{
		{Domain: "c.com", Event: domain.EventChange, Message: " - Auto Renew Changed: false => true"},
	}
	got = ntfyBody(domain.EventChange, changes)
	if !strings.Contains(got, "**c.com**:") || !strings.Contains(got, "Auto Renew Changed") {
		t.Errorf("ntfyBody(change) = %q", got)
	}
}

func TestNtfySend(t *testing.T) {
	type published struct {
		topic string
		title string
		body  string
	}
	var messages []published

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		messages = append(messages, published{
			topic: strings.TrimPrefix(r.URL.Path, "/"),
			title: r.Header.Get("X-Title"),
			body:  string(body),
		})
		if user, pass, ok := r.BasicAuth(); !ok || user != "user" || pass != "pass" {
			t.Errorf("expected basic auth, got %q %q", user, pass)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewNtfy(config.Ntfy{URL: server.URL, Topic: "domains", Username: "user", Password: "pass"})

	notifications := []domain.Notification{
		{Domain: "gone.com", Event: domain.EventDelete, Message: "Domain deleted"},
		{Domain: "new.com", Event: domain.EventAdd, Message: "New domain detected"},
	}
	if err := sender.Send(context.Background(), notifications); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected one message per event kind, got %d", len(messages))
	}
	if messages[0].topic != "domains" || messages[0].title != "Domain Deleted" {
		t.Errorf("unexpected first message %+v", messages[0])
	}
	if messages[1].title != "New Domain" || messages[1].body != "`new.com`" {
		t.Errorf("unexpected second message %+v", messages[1])
	}
}

func TestNtfySendEmpty(t *testing.T) {
	sender := NewNtfy(config.Ntfy{URL: "http://ntfy.invalid", Topic: "domains"})
	// Empty batch is a no-op, no request attempted.
	if err := sender.Send(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTelegramText(t *testing.T) {
	notifications := []domain.Notification{
		{Domain: "gone.com", Event: domain.EventDelete, Message: "Domain deleted"},
		{Domain: "changed.com", Event: domain.EventChange, Message: " - Auto Renew Changed: true => false"},
	}

	got := telegramText(notifications)

	if !strings.Contains(got, "*Domain Deleted*\n`gone.com`") {
		t.Errorf("missing delete block: %q", got)
	}
	if !strings.Contains(got, "*Domain Changed*\n`changed.com`:") {
		t.Errorf("missing change block: %q", got)
	}
	// Deletions render before changes.
	if strings.Index(got, "Deleted") > strings.Index(got, "Changed") {
		t.Errorf("unexpected block order: %q", got)
	}
}

func TestTelegramSend(t *testing.T) {
	var path string
	var payload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	sender := NewTelegram(config.Telegram{Token: "bot-token", ChatID: 42})
	sender.baseURL = server.URL

	notifications := []domain.Notification{
		{Domain: "new.com", Event: domain.EventAdd, Message: "New domain detected"},
	}
	if err := sender.Send(context.Background(), notifications); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path != "/botbot-token/sendMessage" {
		t.Errorf("unexpected path %q", path)
	}
	if payload["chat_id"] != float64(42) {
		t.Errorf("unexpected chat id %v", payload["chat_id"])
	}
	if text, _ := payload["text"].(string); !strings.Contains(text, "New Domain") {
		t.Errorf("unexpected text %q", text)
	}
}
