package server

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/evanofslack/domain-sync/internal/domain"
)

// buildCalendar renders registration expiries as all-day events, one event
// per calendar day. Domains expiring the same day share a single event so
// the feed stays readable when many registrations renew together.
func buildCalendar(domains []domain.Record) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//domain-sync//EN")
	cal.SetName("Domain Expirations")

	byDay := make(map[time.Time][]string)
	for _, d := range domains {
		if d.ExpiresAt == nil {
			continue
		}
		day := d.ExpiresAt.UTC().Truncate(24 * time.Hour)
		byDay[day] = append(byDay[day], d.Name)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	now := time.Now().UTC()
	for _, day := range days {
		names := byDay[day]
		sort.Strings(names)

		event := cal.AddEvent(fmt.Sprintf("expiry-%s@domain-sync", day.Format("2006-01-02")))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.Add(24 * time.Hour))
		if len(names) == 1 {
			event.SetSummary(fmt.Sprintf("%s expires", names[0]))
		} else {
			event.SetSummary(fmt.Sprintf("%d domains expire", len(names)))
		}
		event.SetDescription(strings.Join(names, "\n"))
	}
	return cal
}
