package publib

import (
	"testing"
	"time"
)

func TestStatus_Transitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusDraft, StatusScheduled},
		{StatusDraft, StatusProcessing},
		{StatusDraft, StatusCancelled},
		{StatusScheduled, StatusProcessing},
		{StatusScheduled, StatusCancelled},
		{StatusScheduled, StatusDraft},
		{StatusProcessing, StatusPublished},
		{StatusProcessing, StatusFailed},
		{StatusFailed, StatusDraft},
		{StatusFailed, StatusScheduled},
		{StatusCancelled, StatusDraft},
		{StatusCancelled, StatusScheduled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to Status
	}{
		{StatusDraft, StatusPublished},
		{StatusDraft, StatusFailed},
		{StatusScheduled, StatusPublished},
		{StatusScheduled, StatusFailed},
		{StatusProcessing, StatusDraft},
		{StatusProcessing, StatusCancelled},
		{StatusPublished, StatusDraft},
		{StatusPublished, StatusFailed},
		{StatusFailed, StatusProcessing},
		{StatusCancelled, StatusProcessing},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestStatus_PublishedIsTerminal(t *testing.T) {
	if !StatusPublished.Terminal() {
		t.Error("published must be terminal")
	}
	for _, s := range []Status{StatusDraft, StatusScheduled, StatusProcessing, StatusFailed, StatusCancelled} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestStatus_Valid(t *testing.T) {
	if !StatusDraft.Valid() {
		t.Error("draft should be valid")
	}
	if Status("bogus").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestPublication_CanHelpers(t *testing.T) {
	cases := []struct {
		status     Status
		edit       bool
		del        bool
		schedule   bool
		publishNow bool
	}{
		{StatusDraft, true, true, true, true},
		{StatusScheduled, false, false, false, true},
		{StatusProcessing, false, false, false, false},
		{StatusPublished, false, false, false, false},
		{StatusFailed, true, true, true, true},
		{StatusCancelled, false, true, false, false},
	}
	for _, tc := range cases {
		p := &Publication{Status: tc.status}
		if got := p.CanEdit(); got != tc.edit {
			t.Errorf("%s: CanEdit = %v, want %v", tc.status, got, tc.edit)
		}
		if got := p.CanDelete(); got != tc.del {
			t.Errorf("%s: CanDelete = %v, want %v", tc.status, got, tc.del)
		}
		if got := p.CanSchedule(); got != tc.schedule {
			t.Errorf("%s: CanSchedule = %v, want %v", tc.status, got, tc.schedule)
		}
		if got := p.CanPublishNow(); got != tc.publishNow {
			t.Errorf("%s: CanPublishNow = %v, want %v", tc.status, got, tc.publishNow)
		}
	}
}

func TestPublication_IsOverdue(t *testing.T) {
	now := time.Now()
	p := &Publication{Status: StatusScheduled, ScheduledAt: now.Add(-time.Hour)}
	if !p.IsOverdue(now) {
		t.Error("past scheduled publication should be overdue")
	}
	p.ScheduledAt = now.Add(time.Hour)
	if p.IsOverdue(now) {
		t.Error("future scheduled publication should not be overdue")
	}
	p = &Publication{Status: StatusDraft, ScheduledAt: now.Add(-time.Hour)}
	if p.IsOverdue(now) {
		t.Error("draft is never overdue")
	}
	p = &Publication{Status: StatusScheduled}
	if p.IsOverdue(now) {
		t.Error("zero scheduled time is never overdue")
	}
}
