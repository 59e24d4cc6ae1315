package publib

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// RefetchTrigger is a shared monotonic revision counter. Calendar views
// subscribe to it and re-pull their date range whenever the revision bumps.
type RefetchTrigger struct {
	rev    atomic.Uint64
	nextId atomic.Int64
	subs   VMap[int64, func(rev uint64)]
	l      *log.Logger
}

// NewRefetchTrigger returns a trigger at revision 0.
func NewRefetchTrigger(l *log.Logger) *RefetchTrigger {
	if l == nil {
		l = log.Default()
	}
	return &RefetchTrigger{
		subs: NewVMap[int64, func(rev uint64)](),
		l:    l,
	}
}

// Revision returns the current revision.
func (t *RefetchTrigger) Revision() uint64 {
	return t.rev.Load()
}

// Bump increments the revision and notifies subscribers synchronously.
// Subscriber panics are isolated so one bad subscriber cannot starve the rest.
func (t *RefetchTrigger) Bump() uint64 {
	rev := t.rev.Add(1)
	t.subs.Range(func(id int64, fn func(uint64)) bool {
		safeCall(t.l, fmt.Sprintf("refetch subscriber %d", id), func() {
			fn(rev)
		})
		return true
	})
	return rev
}

// Subscribe registers fn to run on every bump and returns an unsubscribe
// function.
func (t *RefetchTrigger) Subscribe(fn func(rev uint64)) (unsubscribe func()) {
	id := t.nextId.Add(1)
	t.subs.Set(id, fn)
	return func() {
		t.subs.Delete(id)
	}
}

// EventDrop describes a calendar drag-and-drop: the publication that moved,
// its new start time, and the calendar's native revert hook that undoes the
// visual move.
type EventDrop struct {
	Id       string
	NewStart time.Time
	// Revert restores the event to its original slot. Invoked at most once,
	// only on failure.
	Revert func()
}

// Rescheduler applies optimistic calendar drops: the UI has already moved
// the event, so a failed remote update must revert it. A successful update
// bumps the refetch trigger so every calendar view re-pulls fresh data.
type Rescheduler struct {
	m       *Manager
	trigger *RefetchTrigger
	l       *log.Logger
}

// NewRescheduler creates a Rescheduler over the manager and trigger.
func NewRescheduler(m *Manager, trigger *RefetchTrigger, l *log.Logger) *Rescheduler {
	if l == nil {
		l = log.Default()
	}
	return &Rescheduler{m: m, trigger: trigger, l: l}
}

// Drop performs the remote reschedule for a calendar drag. One attempt, no
// retry: on any failure, including a panic inside the update path, the
// calendar's revert hook runs exactly once and no refetch is triggered.
func (r *Rescheduler) Drop(ctx context.Context, drop EventDrop) (err error) {
	reverted := false
	revert := func() {
		if reverted || drop.Revert == nil {
			return
		}
		reverted = true
		safeCall(r.l, "calendar revert", drop.Revert)
	}
	defer func() {
		if p := recover(); p != nil {
			revert()
			err = fmt.Errorf("reschedule %s: %v", drop.Id, p)
		}
	}()

	if err := r.m.Reschedule(ctx, drop.Id, drop.NewStart); err != nil {
		revert()
		return err
	}
	r.trigger.Bump()
	return nil
}
