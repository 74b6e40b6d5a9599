package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanofslack/domain-sync/internal/domain"
)

// Sender delivers a batch of notifications to one transport. Delivery
// failures never roll back the persisted notification rows.
type Sender interface {
	Name() string
	Send(ctx context.Context, notifications []domain.Notification) error
}

// groupByEvent batches notifications by event kind so each kind becomes one
// message block.
func groupByEvent(notifications []domain.Notification) map[string][]domain.Notification {
	groups := make(map[string][]domain.Notification)
	for _, n := range notifications {
		groups[n.Event] = append(groups[n.Event], n)
	}
	return groups
}

// eventTitle renders the block title for an event kind, pluralized by batch
// size.
func eventTitle(event string, count int) string {
	plural := ""
	if count > 1 {
		plural = "s"
	}
	switch event {
	case domain.EventAdd:
		return fmt.Sprintf("New Domain%s", plural)
	case domain.EventDelete:
		return fmt.Sprintf("Domain%s Deleted", plural)
	case domain.EventChange:
		return fmt.Sprintf("Domain%s Changed", plural)
	default:
		return "Unknown"
	}
}

// domainList renders a batch as backticked domain names, one per line.
func domainList(notifications []domain.Notification) string {
	lines := make([]string, 0, len(notifications))
	for _, n := range notifications {
		lines = append(lines, fmt.Sprintf("`%s`", n.Domain))
	}
	return strings.Join(lines, "\n")
}

// stable block order for multi-kind batches
var eventOrder = []string{domain.EventDelete, domain.EventAdd, domain.EventChange}

func orderedEvents(groups map[string][]domain.Notification) []string {
	events := make([]string, 0, len(groups))
	for _, event := range eventOrder {
		if _, ok := groups[event]; ok {
			events = append(events, event)
		}
	}
	for event := range groups {
		known := false
		for _, e := range eventOrder {
			if e == event {
				known = true
			}
		}
		if !known {
			events = append(events, event)
		}
	}
	return events
}
