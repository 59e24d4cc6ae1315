package publib

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adhocore/gronx"
	"github.com/google/uuid"
)

// Manager is the coordination point for publication state. It owns the
// backing store, enforces the status transition table, and invokes lifecycle
// handlers after every persisted change.
type Manager struct {
	store    *Store
	handlers *Handlers
	l        *log.Logger
}

// ManagerOpts contains optional parameters for InitManager.
type ManagerOpts struct {
	// Handlers receive lifecycle notifications. Missing callbacks are no-ops.
	Handlers *Handlers
	// Logger receives warnings. Defaults to log.Default().
	Logger *log.Logger
}

// InitManager opens the store at path and returns a ready Manager.
func InitManager(path string, opts *ManagerOpts) (*Manager, error) {
	if opts == nil {
		opts = &ManagerOpts{}
	}
	if opts.Handlers == nil {
		opts.Handlers = &Handlers{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	opts.Handlers.setDefault(opts.Logger)
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	return &Manager{
		store:    store,
		handlers: opts.Handlers,
		l:        opts.Logger,
	}, nil
}

// Store exposes the backing store for read-side collaborators
// (event source, pollers).
func (m *Manager) Store() *Store {
	return m.store
}

// Close closes the backing store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Create validates and persists a new publication. Validation failures are
// reported in the Result, never as an error; the error return covers
// infrastructure failures only.
func (m *Manager) Create(ctx context.Context, p *Publication) (Result, error) {
	now := time.Now()
	if errs := p.Validate(now); len(errs) > 0 {
		return ResultFailed(errs...), nil
	}
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	if p.Status == "" {
		if p.ScheduledAt.IsZero() {
			p.Status = StatusDraft
		} else {
			p.Status = StatusScheduled
		}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := m.store.SavePublication(ctx, p); err != nil {
		return Result{}, err
	}
	return ResultOK(), nil
}

// Get returns the publication with the given id.
func (m *Manager) Get(ctx context.Context, id string) (*Publication, error) {
	return m.store.GetPublication(ctx, id)
}

// List returns publications matching the query, unordered.
func (m *Manager) List(ctx context.Context, q ListQuery) ([]*Publication, error) {
	return m.store.ListPublications(ctx, q)
}

// UpdateContent replaces the content of an editable publication.
// Non-editable statuses return ErrNotEditable.
func (m *Manager) UpdateContent(ctx context.Context, id string, content Content) (Result, error) {
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !p.CanEdit() {
		return Result{}, fmt.Errorf("%w: %s", ErrNotEditable, p.Status)
	}
	p.Content = content
	if errs := p.Validate(time.Now()); len(errs) > 0 {
		return ResultFailed(errs...), nil
	}
	p.UpdatedAt = time.Now()
	if err := m.store.SavePublication(ctx, p); err != nil {
		return Result{}, err
	}
	return ResultOK(), nil
}

// Transition moves the publication to a new status, enforcing the transition
// table. The status-change handler fires after the change is persisted.
func (m *Manager) Transition(ctx context.Context, id string, to Status) (*Publication, error) {
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	if to == StatusPublished {
		p.PublishedAt = p.UpdatedAt
	}
	if err := m.store.SavePublication(ctx, p); err != nil {
		return nil, err
	}
	m.handlers.StatusChangeHandler(p.Id, from, to)
	return p, nil
}

// Schedule sets the publish time (and optional cron recurrence) of a
// schedulable publication and moves it to scheduled.
func (m *Manager) Schedule(ctx context.Context, id string, at time.Time, cronExpr string) (Result, error) {
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !p.CanSchedule() {
		return Result{}, fmt.Errorf("%w: %s", ErrNotSchedulable, p.Status)
	}
	if at.IsZero() || at.Before(time.Now()) {
		return ResultFailed("scheduled date must be in the future"), nil
	}
	if cronExpr != "" && !gronx.New().IsValid(cronExpr) {
		return ResultFailed("invalid cron expression: " + cronExpr), nil
	}
	from := p.Status
	p.ScheduledAt = at
	p.CronExpr = cronExpr
	p.Status = StatusScheduled
	p.Error = ""
	p.UpdatedAt = time.Now()
	if err := m.store.SavePublication(ctx, p); err != nil {
		return Result{}, err
	}
	m.handlers.StatusChangeHandler(p.Id, from, StatusScheduled)
	return ResultOK(), nil
}

// Reschedule moves the publish time of a draft or scheduled publication.
// It is the single remote call behind the optimistic calendar drop and
// deliberately does nothing else: no status change, no handler fan-out.
func (m *Manager) Reschedule(ctx context.Context, id string, newStart time.Time) error {
	if newStart.IsZero() {
		return fmt.Errorf("reschedule %s: new start time is required", id)
	}
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != StatusScheduled && p.Status != StatusDraft {
		return fmt.Errorf("%w: %s", ErrNotSchedulable, p.Status)
	}
	p.ScheduledAt = newStart
	p.UpdatedAt = time.Now()
	return m.store.SavePublication(ctx, p)
}

// Cancel moves the publication to cancelled.
func (m *Manager) Cancel(ctx context.Context, id string) (*Publication, error) {
	return m.Transition(ctx, id, StatusCancelled)
}

// Delete removes a deletable publication from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanDelete() {
		return fmt.Errorf("%w: %s", ErrNotDeletable, p.Status)
	}
	return m.store.DeletePublication(ctx, id)
}

// MarkMissed demotes a scheduled publication whose publish time passed
// without the daemon running. It moves back to draft with the miss recorded
// so the user can reschedule, and fires the schedule-missed handler.
func (m *Manager) MarkMissed(ctx context.Context, id string) error {
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != StatusScheduled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusDraft)
	}
	from := p.Status
	p.Status = StatusDraft
	p.Error = fmt.Sprintf("missed scheduled publish time %s", p.ScheduledAt.Format(time.RFC3339))
	p.UpdatedAt = time.Now()
	if err := m.store.SavePublication(ctx, p); err != nil {
		return err
	}
	m.handlers.StatusChangeHandler(p.Id, from, StatusDraft)
	m.handlers.ScheduleMissedHandler(p.Id)
	return nil
}

// MarkFailed records a publish failure, moving processing to failed.
func (m *Manager) MarkFailed(ctx context.Context, id string, cause error) error {
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return err
	}
	from := p.Status
	if !from.CanTransitionTo(StatusFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, StatusFailed)
	}
	p.Status = StatusFailed
	p.Error = cause.Error()
	p.UpdatedAt = time.Now()
	if err := m.store.SavePublication(ctx, p); err != nil {
		return err
	}
	m.handlers.StatusChangeHandler(p.Id, from, StatusFailed)
	m.handlers.ErrorHandler(p.Id, cause)
	return nil
}
