package loading

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sort"
	"sync"
	"time"
)

// Priority weighs a dependency's contribution under the weighted strategy.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Phase is the coarse-grained startup bucket a dependency belongs to.
// A dependency's phase never changes after registration.
type Phase string

const (
	PhaseInitialization Phase = "initialization"
	PhaseAuthentication Phase = "authentication"
	PhaseDataLoading    Phase = "data-loading"
	PhaseReady          Phase = "ready"
)

// phaseOrder is the fixed scan order for current-phase determination.
// This is a priority scan, not registration order.
var phaseOrder = []Phase{PhaseInitialization, PhaseAuthentication, PhaseDataLoading}

// ErrDependencyTimeout marks a required dependency that did not finish
// loading within its configured timeout.
var ErrDependencyTimeout = errors.New("dependency timed out while loading")

// Dependency is a named unit of async readiness registered with a Tracker.
type Dependency struct {
	// Id is the unique key of the dependency.
	Id string
	// Name is the human-readable label.
	Name string
	// Priority sets the weighted-strategy weight. Defaults to medium.
	Priority Priority
	// Phase buckets the dependency. Defaults to initialization.
	Phase Phase
	// IsLoading is the initial loading state. False means the dependency
	// is already satisfied at registration time.
	IsLoading bool
	// IsRequired marks dependencies that gate global loading.
	IsRequired bool
	// Timeout, when non-zero, arms a countdown; a required dependency
	// still loading when it fires is completed with ErrDependencyTimeout.
	Timeout time.Duration
	// OnTimeout is invoked when the timeout fires. Panics are isolated.
	OnTimeout func()
	// OnError is invoked when the dependency fails. Panics are isolated.
	OnError func(err error)
}

// State is an immutable snapshot of the aggregate loading state. Containers
// are freshly allocated on every snapshot; callers may keep or mutate them.
type State struct {
	// GlobalLoading is true while any required dependency is loading.
	GlobalLoading bool
	// CurrentPhase is the earliest phase (in fixed order) with a loading
	// dependency, or PhaseReady when none is loading.
	CurrentPhase Phase
	// Progress is 0-100 under the configured strategy.
	Progress int
	// EstimatedTimeLeft extrapolates the remaining time from elapsed time
	// and progress. Only meaningful when HasEstimate is true.
	EstimatedTimeLeft time.Duration
	// HasEstimate is false whenever progress is zero or nothing is loading,
	// to avoid division-by-zero estimates.
	HasEstimate bool
	// Loaded holds the ids of completed dependencies, sorted.
	Loaded []string
	// Failed holds the ids of failed dependencies, sorted.
	Failed []string
}

type depState struct {
	dep     Dependency
	loading bool
	loaded  bool
	failed  bool
}

// Tracker aggregates loading dependencies. Construct with NewTracker and
// inject where needed; it holds no global state.
type Tracker struct {
	strategy Strategy

	// opMu serializes every mutation plus its subscriber dispatch, so the
	// effects of two updates never interleave. Subscriber callbacks run
	// without mu held and may read the tracker, but must not mutate it.
	opMu sync.Mutex
	// mu protects the fields below for concurrent readers.
	mu        sync.Mutex
	deps      map[string]*depState
	timers    map[string]*time.Timer
	subs      map[int64]func(State)
	nextSub   int64
	startedAt time.Time
	closed    bool

	l *log.Logger
}

// NewTracker creates a tracker with the given progress strategy.
// l defaults to log.Default().
func NewTracker(strategy Strategy, l *log.Logger) *Tracker {
	if !strategy.valid() {
		strategy = StrategyLinear
	}
	if l == nil {
		l = log.Default()
	}
	return &Tracker{
		strategy:  strategy,
		deps:      make(map[string]*depState),
		timers:    make(map[string]*time.Timer),
		subs:      make(map[int64]func(State)),
		startedAt: time.Now(),
		l:         l,
	}
}

// Register upserts a dependency by id. A dependency registered with
// IsLoading false is immediately counted as loaded. A configured timeout is
// (re)armed when the dependency starts loading. Registration is idempotent:
// re-registering the same payload does not duplicate loaded/failed entries.
func (t *Tracker) Register(dep Dependency) {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if dep.Priority == "" {
		dep.Priority = PriorityMedium
	}
	if dep.Phase == "" {
		dep.Phase = PhaseInitialization
	}
	t.stopTimerLocked(dep.Id)
	ds := &depState{
		dep:     dep,
		loading: dep.IsLoading,
		loaded:  !dep.IsLoading,
	}
	t.deps[dep.Id] = ds
	if dep.IsLoading && dep.Timeout > 0 {
		id := dep.Id
		t.timers[id] = time.AfterFunc(dep.Timeout, func() {
			t.fireTimeout(id)
		})
	}
	snap := t.snapshotLocked()
	subs := t.subscribersLocked()
	t.mu.Unlock()

	t.dispatch(snap, subs)
}

// Update reports a dependency's loading transition. Unknown ids log a
// warning and are otherwise ignored. Supplying depErr marks the dependency
// failed regardless of stillLoading; a true-to-false transition without an
// error marks it loaded. State is recomputed and subscribers are notified
// synchronously after every call.
func (t *Tracker) Update(id string, stillLoading bool, depErr error) {
	t.opMu.Lock()
	defer t.opMu.Unlock()
	t.updateSerialized(id, stillLoading, depErr)
}

// updateSerialized is Update without opMu acquisition; callers hold opMu.
func (t *Tracker) updateSerialized(id string, stillLoading bool, depErr error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	ds, ok := t.deps[id]
	if !ok {
		t.mu.Unlock()
		t.l.Printf("loading: update for unknown dependency %q ignored", id)
		return
	}
	t.stopTimerLocked(id)

	wasLoading := ds.loading
	ds.loading = stillLoading
	switch {
	case depErr != nil:
		ds.failed = true
		ds.loaded = false
	case !stillLoading && wasLoading:
		ds.loaded = true
		ds.failed = false
	case stillLoading:
		// re-entering the loading state: progress may decrease
		ds.loaded = false
	}
	onError := ds.dep.OnError
	snap := t.snapshotLocked()
	subs := t.subscribersLocked()
	t.mu.Unlock()

	t.l.Printf("loading: dependency %q loading=%v err=%v", id, stillLoading, depErr)
	if depErr != nil && onError != nil {
		t.safeCall(fmt.Sprintf("dependency %s OnError", id), func() {
			onError(depErr)
		})
	}
	t.dispatch(snap, subs)
}

// fireTimeout runs when a dependency's countdown elapses while it is still
// loading. The OnTimeout callback always fires; required dependencies are
// additionally completed as failed with ErrDependencyTimeout.
func (t *Tracker) fireTimeout(id string) {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	t.mu.Lock()
	ds, ok := t.deps[id]
	if !ok || t.closed || !ds.loading {
		t.mu.Unlock()
		return
	}
	delete(t.timers, id)
	onTimeout := ds.dep.OnTimeout
	required := ds.dep.IsRequired
	t.mu.Unlock()

	if onTimeout != nil {
		t.safeCall(fmt.Sprintf("dependency %s OnTimeout", id), onTimeout)
	}
	if required {
		t.updateSerialized(id, false, fmt.Errorf("%w: %s", ErrDependencyTimeout, id))
	}
}

// Subscribe registers a callback for state changes. The callback is invoked
// immediately with the current state so late subscribers get a snapshot, and
// the returned function removes the subscription. Callback panics are
// isolated per subscriber.
func (t *Tracker) Subscribe(fn func(State)) (unsubscribe func()) {
	t.opMu.Lock()
	t.mu.Lock()
	t.nextSub++
	id := t.nextSub
	t.subs[id] = fn
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.safeCall(fmt.Sprintf("subscriber %d", id), func() {
		fn(snap)
	})
	t.opMu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Snapshot returns a defensively copied view of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Reset clears all dependencies, cancels outstanding timers, restarts the
// elapsed-time clock and notifies subscribers.
func (t *Tracker) Reset() {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	t.mu.Lock()
	for id := range t.timers {
		t.stopTimerLocked(id)
	}
	t.deps = make(map[string]*depState)
	t.startedAt = time.Now()
	snap := t.snapshotLocked()
	subs := t.subscribersLocked()
	t.mu.Unlock()

	t.dispatch(snap, subs)
}

// Close cancels all timers and drops subscribers. The tracker ignores
// further mutations.
func (t *Tracker) Close() {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.timers {
		t.stopTimerLocked(id)
	}
	t.subs = make(map[int64]func(State))
	t.closed = true
}

func (t *Tracker) stopTimerLocked(id string) {
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
}

func (t *Tracker) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(t.subs))
	ids := make([]int64, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		subs = append(subs, t.subs[id])
	}
	return subs
}

func (t *Tracker) dispatch(snap State, subs []func(State)) {
	for i, fn := range subs {
		t.safeCall(fmt.Sprintf("subscriber %d", i), func() {
			fn(snap)
		})
	}
}

func (t *Tracker) safeCall(context string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.l.Printf("loading: PANIC [%s]: %v\n%s", context, r, debug.Stack())
		}
	}()
	fn()
}

// snapshotLocked derives the aggregate state. Callers hold t.mu.
func (t *Tracker) snapshotLocked() State {
	s := State{
		CurrentPhase: currentPhase(t.deps),
		Progress:     t.strategy.progress(t.deps),
	}
	for id, ds := range t.deps {
		if ds.dep.IsRequired && ds.loading {
			s.GlobalLoading = true
		}
		if ds.loaded {
			s.Loaded = append(s.Loaded, id)
		}
		if ds.failed {
			s.Failed = append(s.Failed, id)
		}
	}
	sort.Strings(s.Loaded)
	sort.Strings(s.Failed)
	if s.GlobalLoading && s.Progress > 0 {
		elapsed := time.Since(t.startedAt)
		remaining := time.Duration(float64(elapsed)/float64(s.Progress)*100) - elapsed
		if remaining < 0 {
			remaining = 0
		}
		s.EstimatedTimeLeft = remaining
		s.HasEstimate = true
	}
	return s
}
