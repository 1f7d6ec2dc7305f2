// Package action implements the per-place action-dispatch layer: the
// worker pool, the one-shot task latch, the two-list dispatch/collect
// algorithm, and the pluggable action-implementation registry.
package action

import (
	"sync"
	"time"

	petri "github.com/bnetrun/bnet"
)

type taskState int

const (
	notStarted taskState = iota
	running
	done
)

// Task is a one-shot latch over a callable producing an outcome, per spec
// §4.2. The outcome is written under the same lock that flips state to
// done, so a status probe that observes done always sees the outcome that
// goes with it.
type Task struct {
	mu      sync.Mutex
	cond    *sync.Cond
	state   taskState
	outcome petri.OutcomeKind
	fn      func() petri.OutcomeKind
}

// NewTask wraps fn, which must return one of the six outcome kinds.
func NewTask(fn func() petri.OutcomeKind) *Task {
	t := &Task{fn: fn, state: notStarted}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Run executes the wrapped callable. Called by a WorkerPool worker, never
// by the engine thread.
func (t *Task) Run() {
	t.mu.Lock()
	t.state = running
	t.mu.Unlock()

	outcome := t.fn()

	t.mu.Lock()
	t.outcome = outcome
	t.state = done
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Status probes the task's current kind. A timeout of zero never blocks:
// NOT_STARTED / the stored outcome / QUERY_TIMEOUT are reported immediately.
// A positive timeout waits for up to that long for a RUNNING task to reach
// done before giving up and reporting QUERY_TIMEOUT.
func (t *Task) Status(timeout time.Duration) petri.OutcomeKind {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case notStarted:
		return petri.NotStarted
	case done:
		return t.outcome
	}

	if timeout <= 0 {
		return petri.QueryTimeout
	}

	deadline := time.Now().Add(timeout)
	for t.state == running {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return petri.QueryTimeout
		}
		timer := time.AfterFunc(remaining, t.cond.Broadcast)
		t.cond.Wait()
		timer.Stop()
	}
	if t.state == done {
		return t.outcome
	}
	return petri.QueryTimeout
}
