package scheduler

import (
	"container/heap"
	"context"
	"time"

	"github.com/adhocore/gronx"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

const maxSleepCap = 60 * time.Second

// Scheduler manages scheduled publish events using a min-heap. It runs a
// background goroutine that sleeps until the next event's trigger time, then
// calls the onTrigger callback with the publication id.
type Scheduler struct {
	addChan    chan PublishEvent
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a new Scheduler. The onTrigger callback is invoked
// when a scheduled event fires. The scheduler goroutine exits when ctx is
// cancelled.
func New(ctx context.Context, onTrigger func(string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan PublishEvent, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add enqueues a new publish event.
func (s *Scheduler) Add(event PublishEvent) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove cancels a scheduled event by publication id.
func (s *Scheduler) Remove(publicationId string) {
	select {
	case s.removeChan <- publicationId:
	case <-s.ctx.Done():
	}
}

// run is the core scheduler goroutine implementing the active-object
// pattern. It maintains a min-heap of events and sleeps with a 60s
// max-sleep-cap. Recurring events (CronExpr != "") are re-added with their
// next occurrence after firing.
func (s *Scheduler) run(onTrigger func(string)) {
	h := &publishHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// No events — block indefinitely on channels
			return nil
		}
		next := (*h)[0].TriggerAt
		dur := time.Until(next)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heapPush(h, event)
			timerCh = resetTimer()

		case id := <-s.removeChan:
			heapRemoveById(h, id)
			timerCh = resetTimer()

		case <-timerCh:
			// Fire all events whose time has arrived
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				onTrigger(event.PublicationId)
				if event.CronExpr != "" {
					next, err := nextCronOccurrence(event.CronExpr, time.Now())
					if err == nil {
						heapPush(h, PublishEvent{
							PublicationId: event.PublicationId,
							TriggerAt:     next,
							CronExpr:      event.CronExpr,
						})
					}
				}
			}
			timerCh = resetTimer()
		}
	}
}

// nextCronOccurrence returns the next time the cron expression fires
// strictly after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// ValidCron reports whether expr is a parsable cron expression with at least
// one occurrence within a year of now.
func ValidCron(expr string, now time.Time) bool {
	next, err := gronx.NextTickAfter(expr, now, false)
	if err != nil {
		return false
	}
	return next.Before(now.Add(365 * 24 * time.Hour))
}

// LoadSchedules scans scheduled publications at daemon startup, splitting
// them into missed (publish time already passed while the daemon was down)
// and future events ready to push into the heap.
//
// For missed recurring publications, the next cron occurrence is computed
// and added to future so the recurrence continues.
func LoadSchedules(pubs []*publib.Publication, now time.Time) (missed []*publib.Publication, future []PublishEvent) {
	for _, p := range pubs {
		if p.Status != publib.StatusScheduled {
			continue
		}
		if p.ScheduledAt.IsZero() {
			continue
		}
		if p.ScheduledAt.Before(now) {
			missed = append(missed, p)
			if p.CronExpr != "" {
				next, err := nextCronOccurrence(p.CronExpr, now)
				if err == nil {
					future = append(future, PublishEvent{
						PublicationId: p.Id,
						TriggerAt:     next,
						CronExpr:      p.CronExpr,
					})
				}
			}
		} else {
			future = append(future, PublishEvent{
				PublicationId: p.Id,
				TriggerAt:     p.ScheduledAt,
				CronExpr:      p.CronExpr,
			})
		}
	}
	return missed, future
}
