package scheduler

import "time"

// PublishEvent represents a pending scheduled publication in the scheduler
// heap. It is an in-memory only type; the heap is rebuilt from publication
// rows on daemon restart.
type PublishEvent struct {
	// PublicationId identifies the publication to publish when TriggerAt
	// is reached.
	PublicationId string
	// TriggerAt is the wall-clock time when publishing should begin.
	TriggerAt time.Time
	// CronExpr is the cron expression for recurring publications.
	// Empty string means one-shot — no re-scheduling after firing.
	CronExpr string
}
