package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evanofslack/domain-sync/internal/config"
	"github.com/evanofslack/domain-sync/internal/domain"
)

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

// NtfySender publishes one markdown message per event kind to a ntfy topic.
type NtfySender struct {
	url      string
	topic    string
	username string
	password string
	http     Httper
}

func NewNtfy(cfg config.Ntfy) *NtfySender {
	return &NtfySender{
		url:      strings.TrimSuffix(cfg.URL, "/"),
		topic:    cfg.Topic,
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{},
	}
}

func (s *NtfySender) Name() string { return "ntfy" }

func (s *NtfySender) Send(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	groups := groupByEvent(notifications)
	for _, event := range orderedEvents(groups) {
		batch := groups[event]
		title := eventTitle(event, len(batch))
		body := ntfyBody(event, batch)

		if err := s.publish(ctx, title, body); err != nil {
			return fmt.Errorf("publish ntfy message %q: %w", title, err)
		}
		slog.Debug("Published ntfy message", "title", title, "count", len(batch))
	}
	return nil
}

// ntfyBody renders one event kind's batch. Changes get the per-domain diff
// text; additions and deletions are a plain list of names.
func ntfyBody(event string, batch []domain.Notification) string {
	if event != domain.EventChange {
		return domainList(batch)
	}

	var blocks []string
	for _, n := range batch {
		blocks = append(blocks, fmt.Sprintf("**%s**:\n%s", n.Domain, n.Message))
	}
	return strings.Join(blocks, "\n\n")
}

func (s *NtfySender) publish(ctx context.Context, title, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/"+s.topic, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-Title", title)
	req.Header.Set("X-Markdown", "true")
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy publish, status=%d", resp.StatusCode)
	}
	return nil
}
