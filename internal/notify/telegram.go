package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evanofslack/domain-sync/internal/config"
	"github.com/evanofslack/domain-sync/internal/domain"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// TelegramSender delivers all event kinds of a cycle as one markdown
// message to a chat.
type TelegramSender struct {
	baseURL string
	token   string
	chatID  int64
	http    Httper
}

func NewTelegram(cfg config.Telegram) *TelegramSender {
	return &TelegramSender{
		baseURL: defaultTelegramBaseURL,
		token:   cfg.Token,
		chatID:  cfg.ChatID,
		http:    &http.Client{},
	}
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Send(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	text := telegramText(notifications)

	payload := map[string]any{
		"chat_id":    s.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send message, status=%d", resp.StatusCode)
	}

	slog.Debug("Sent telegram message", "count", len(notifications))
	return nil
}

// telegramText joins one titled block per event kind.
func telegramText(notifications []domain.Notification) string {
	groups := groupByEvent(notifications)

	var blocks []string
	for _, event := range orderedEvents(groups) {
		batch := groups[event]
		title := eventTitle(event, len(batch))

		var body string
		if event == domain.EventChange {
			var lines []string
			for _, n := range batch {
				lines = append(lines, fmt.Sprintf("`%s`:\n%s", n.Domain, n.Message))
			}
			body = strings.Join(lines, "\n")
		} else {
			body = domainList(batch)
		}

		blocks = append(blocks, fmt.Sprintf("*%s*\n%s", title, body))
	}

	return strings.Join(blocks, "\n\n")
}
