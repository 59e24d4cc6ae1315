// Package scheduler provides timed publishing for pubdeck. It implements a
// single-goroutine scheduler using a min-heap of PublishEvents sorted by
// trigger time, with a 60-second max-sleep-cap to handle NTP steps, DST
// transitions, and system sleep.
//
// The scheduler fires events and calls a registered OnTrigger callback to
// push the publication through the publish flow. It does not persist state;
// the heap is rebuilt from publication rows on daemon restart.
package scheduler
