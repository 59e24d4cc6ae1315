package publib

import "time"

// Status is the lifecycle state of a publication.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusScheduled  Status = "scheduled"
	StatusProcessing Status = "processing"
	StatusPublished  Status = "published"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the allowed status transition table. Published is terminal;
// failed and cancelled publications can be reactivated.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusScheduled, StatusProcessing, StatusCancelled},
	StatusScheduled:  {StatusProcessing, StatusCancelled, StatusDraft},
	StatusProcessing: {StatusPublished, StatusFailed},
	StatusPublished:  {},
	StatusFailed:     {StatusDraft, StatusScheduled},
	StatusCancelled:  {StatusDraft, StatusScheduled},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the status may move to the given state.
func (s Status) CanTransitionTo(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanEdit reports whether the publication content may be modified.
// Scheduled and cancelled publications must first move back to draft.
func (p *Publication) CanEdit() bool {
	return p.Status == StatusDraft || p.Status == StatusFailed
}

// CanDelete reports whether the publication may be deleted.
func (p *Publication) CanDelete() bool {
	switch p.Status {
	case StatusDraft, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanSchedule reports whether the publication may be scheduled.
func (p *Publication) CanSchedule() bool {
	return p.Status == StatusDraft || p.Status == StatusFailed
}

// CanPublishNow reports whether the publication may be published immediately.
func (p *Publication) CanPublishNow() bool {
	switch p.Status {
	case StatusDraft, StatusScheduled, StatusFailed:
		return true
	}
	return false
}

// IsOverdue reports whether a scheduled publication has passed its publish
// time without being picked up.
func (p *Publication) IsOverdue(now time.Time) bool {
	return p.Status == StatusScheduled && !p.ScheduledAt.IsZero() && p.ScheduledAt.Before(now)
}
