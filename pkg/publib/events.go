package publib

import (
	"context"
	"sort"
	"time"
)

// eventDuration is the display length of a calendar event.
const eventDuration = 30 * time.Minute

// titleMaxRunes caps the event title; longer content is truncated with an
// ellipsis.
const titleMaxRunes = 60

// EventFilters narrow the calendar event feed.
type EventFilters struct {
	// Statuses keeps only publications in the given states.
	Statuses []Status `json:"statuses,omitempty"`
	// Platform keeps only publications targeting the platform.
	Platform Platform `json:"platform,omitempty"`
	// Search is accepted for wire compatibility but not applied.
	Search string `json:"search,omitempty"`
}

// CalendarEvent is the display form of a publication on the calendar.
// Produced fresh on every fetch and never mutated afterwards.
type CalendarEvent struct {
	Id    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// Publication mirrors the source fields for rendering.
	Publication Publication `json:"publication"`
}

// EventSource supplies calendar events for a visible date range. It is the
// pull-based feed calendar views re-invoke on demand (and on every refetch
// trigger bump).
type EventSource struct {
	m   *Manager
	now func() time.Time
}

// NewEventSource creates an event source over the manager.
// now defaults to time.Now and exists so tests can pin overdue detection.
func NewEventSource(m *Manager, now func() time.Time) *EventSource {
	if now == nil {
		now = time.Now
	}
	return &EventSource{m: m, now: now}
}

// Events fetches publications with an anchor inside [start, end), maps them
// to calendar events and applies the display priority order.
func (s *EventSource) Events(ctx context.Context, start, end time.Time, f EventFilters) ([]CalendarEvent, error) {
	pubs, err := s.m.List(ctx, ListQuery{
		From:     start,
		To:       end,
		Statuses: f.Statuses,
		Platform: f.Platform,
	})
	if err != nil {
		return nil, err
	}
	SortForCalendar(pubs, s.now())
	events := make([]CalendarEvent, 0, len(pubs))
	for _, p := range pubs {
		if ev, ok := eventFor(p); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

// eventFor maps a publication to its calendar event. Publications with
// neither a scheduled nor a created time have no calendar anchor and are
// skipped.
func eventFor(p *Publication) (CalendarEvent, bool) {
	anchor := p.ScheduledAt
	if anchor.IsZero() {
		anchor = p.CreatedAt
	}
	if anchor.IsZero() {
		return CalendarEvent{}, false
	}
	return CalendarEvent{
		Id:          p.Id,
		Title:       truncateTitle(p.Content.Text),
		Start:       anchor,
		End:         anchor.Add(eventDuration),
		Publication: *p,
	}, true
}

func truncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxRunes {
		return text
	}
	return string(runes[:titleMaxRunes]) + "…"
}

// SortForCalendar orders publications for calendar display. The order is a
// strict chain of tie-break comparators, not a weighted score:
// failed, then overdue scheduled, then upcoming scheduled by ascending
// publish time, then processing, then everything else by most recently
// updated.
func SortForCalendar(pubs []*Publication, now time.Time) {
	sort.SliceStable(pubs, func(i, j int) bool {
		return calendarLess(pubs[i], pubs[j], now)
	})
}

func calendarLess(a, b *Publication, now time.Time) bool {
	if af, bf := a.Status == StatusFailed, b.Status == StatusFailed; af != bf {
		return af
	}
	if ao, bo := a.IsOverdue(now), b.IsOverdue(now); ao != bo {
		return ao
	}
	as, bs := a.Status == StatusScheduled, b.Status == StatusScheduled
	if as && bs && !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	if as != bs {
		return as
	}
	if ap, bp := a.Status == StatusProcessing, b.Status == StatusProcessing; ap != bp {
		return ap
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}
