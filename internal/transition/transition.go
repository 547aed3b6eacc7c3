// Package transition drives the short-lived presentation cycle that follows a
// task's lifecycle-state change. The cycle is strictly linear:
//
//	entered -> exiting -> entering -> entered
//
// and is not re-entrant: a state change arriving mid-cycle restarts it from
// exiting against the newest target state, discarding the in-flight phase.
// Phases only pick a visual treatment; they never gate a data operation.
package transition

import (
	"sync"
	"time"

	"github.com/taskdock/taskdock/internal/models"
)

// Phase is the presentation state of a task's most recent transition.
type Phase string

const (
	PhaseEntered  Phase = "entered"
	PhaseExiting  Phase = "exiting"
	PhaseEntering Phase = "entering"
)

// Kind classifies a transition by its (previous, next) state pair.
type Kind string

const (
	KindComplete Kind = "complete" // active -> completed
	KindArchive  Kind = "archive"  // active -> archived
	KindActivate Kind = "activate" // any -> active
	KindDefault  Kind = "default"
)

// The two windows must stay equal to avoid visible asymmetry between a
// task leaving one category and arriving in the next.
const (
	ExitWindow  = 280 * time.Millisecond
	EnterWindow = 280 * time.Millisecond
)

// Classify picks the visual treatment for a state change.
func Classify(prev, next models.TaskState) Kind {
	switch {
	case prev == models.TaskStateActive && next == models.TaskStateCompleted:
		return KindComplete
	case prev == models.TaskStateActive && next == models.TaskStateArchived:
		return KindArchive
	case next == models.TaskStateActive:
		return KindActivate
	default:
		return KindDefault
	}
}

// TimerFunc schedules fn after d and returns a cancel func. The default wraps
// time.AfterFunc; tests substitute a manual clock.
type TimerFunc func(d time.Duration, fn func()) (cancel func())

func afterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Machine tracks the transition cycle for a single task.
type Machine struct {
	mu     sync.Mutex
	phase  Phase
	kind   Kind
	state  models.TaskState
	timer  TimerFunc
	cancel func()
	// gen invalidates callbacks from a preempted cycle that already fired
	// before cancel took effect.
	gen      int
	onChange func(Phase)
}

// NewMachine creates a machine in the steady entered phase.
func NewMachine(state models.TaskState) *Machine {
	return &Machine{
		phase: PhaseEntered,
		kind:  KindDefault,
		state: state,
		timer: afterFunc,
	}
}

// SetTimer replaces the timer implementation. Test hook.
func (m *Machine) SetTimer(t TimerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = t
}

// SetOnChange registers a callback invoked after every phase change.
func (m *Machine) SetOnChange(fn func(Phase)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Phase returns the current presentation phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Kind returns the classification of the transition in flight (or the most
// recent one).
func (m *Machine) Kind() Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// State returns the newest target state the machine has been told about.
func (m *Machine) State() models.TaskState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Notify starts (or restarts) the cycle for a state change. A no-op when the
// state did not actually change.
func (m *Machine) Notify(next models.TaskState) {
	m.mu.Lock()
	if next == m.state {
		m.mu.Unlock()
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	gen := m.gen
	m.kind = Classify(m.state, next)
	m.state = next
	m.phase = PhaseExiting
	m.cancel = m.timer(ExitWindow, func() { m.advance(gen, PhaseEntering) })
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(PhaseExiting)
	}
}

// Stop cancels any pending window. Called on teardown so a stale callback
// cannot fire after the task moved again or was deleted.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
}

func (m *Machine) advance(gen int, to Phase) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.phase = to
	m.cancel = nil
	if to == PhaseEntering {
		m.cancel = m.timer(EnterWindow, func() { m.advance(gen, PhaseEntered) })
	}
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(to)
	}
}

// Tracker owns one machine per task and tears them down deterministically.
type Tracker struct {
	mu       sync.Mutex
	machines map[string]*Machine
	timer    TimerFunc
	onChange func(id string, phase Phase)
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		machines: make(map[string]*Machine),
		timer:    afterFunc,
	}
}

// SetTimer replaces the timer used by machines created from now on. Test hook.
func (t *Tracker) SetTimer(fn TimerFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = fn
}

// SetOnChange registers a callback invoked with the task id on every phase
// change of any tracked machine.
func (t *Tracker) SetOnChange(fn func(id string, phase Phase)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Notify records a state change for a task, creating its machine on first
// sight.
func (t *Tracker) Notify(id string, prev, next models.TaskState) {
	t.mu.Lock()
	m, ok := t.machines[id]
	if !ok {
		m = NewMachine(prev)
		m.SetTimer(t.timer)
		if fn := t.onChange; fn != nil {
			m.SetOnChange(func(p Phase) { fn(id, p) })
		}
		t.machines[id] = m
	}
	t.mu.Unlock()

	m.Notify(next)
}

// Phase returns the phase for a task; untracked tasks are steady.
func (t *Tracker) Phase(id string) Phase {
	t.mu.Lock()
	m, ok := t.machines[id]
	t.mu.Unlock()
	if !ok {
		return PhaseEntered
	}
	return m.Phase()
}

// Kind returns the transition classification for a task.
func (t *Tracker) Kind(id string) Kind {
	t.mu.Lock()
	m, ok := t.machines[id]
	t.mu.Unlock()
	if !ok {
		return KindDefault
	}
	return m.Kind()
}

// Forget stops and drops a task's machine, used when the task is deleted.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	m, ok := t.machines[id]
	delete(t.machines, id)
	t.mu.Unlock()
	if ok {
		m.Stop()
	}
}

// StopAll cancels every pending timer. Called on component teardown.
func (t *Tracker) StopAll() {
	t.mu.Lock()
	machines := make([]*Machine, 0, len(t.machines))
	for _, m := range t.machines {
		machines = append(machines, m)
	}
	t.mu.Unlock()
	for _, m := range machines {
		m.Stop()
	}
}
