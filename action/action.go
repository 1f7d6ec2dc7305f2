package action

import (
	"fmt"
	"sync"

	petri "github.com/bnetrun/bnet"
)

// unit is one outstanding (token, task, delayed_epochs) triple, per spec §4.4.
type unit struct {
	token         *petri.Token
	task          *Task
	delayedEpochs int
}

// Action is the per-place action dispatcher: it implements petri.Dispatcher
// by running one task per busy token through a WorkerPool, tracking
// outstanding work across two FIFO lists so that an action whose callable
// runs longer than one epoch is carried forward rather than re-launched.
type Action struct {
	mu           sync.Mutex
	impl         ActionImpl
	pool         *WorkerPool
	currentEpoch []*unit
	delayed      []*unit
}

// NewAction binds impl's callable to pool for dispatch.
func NewAction(impl ActionImpl, pool *WorkerPool) *Action {
	return &Action{impl: impl, pool: pool}
}

func (a *Action) inDelayed(id string) bool {
	for _, u := range a.delayed {
		if u.token.ID() == id {
			return true
		}
	}
	return false
}

// Dispatch builds and submits one task per busy token that is not already
// carried in delayed, per §4.4. Called with an empty currentEpoch: the
// previous epoch's Collect always drains it.
func (a *Action) Dispatch(busy []*petri.Token) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.currentEpoch) != 0 {
		return fmt.Errorf("%w: action dispatch called with a non-empty current_epoch list", petri.ErrLogicInvariant)
	}

	for _, tok := range busy {
		if a.inDelayed(tok.ID()) {
			continue
		}
		t := tok
		task := NewTask(func() petri.OutcomeKind { return a.impl.Callable(t) })
		a.pool.Submit(task)
		a.currentEpoch = append(a.currentEpoch, &unit{token: t, task: task})
	}
	return nil
}

// Collect runs the two-pass walk in §4.4: first delayed (emit-and-drop
// completed, otherwise age in place), then current_epoch drained from the
// front (emit completed, otherwise move to the tail of delayed). After
// Collect returns, current_epoch is empty.
func (a *Action) Collect() ([]petri.ActionResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var results []petri.ActionResult

	kept := a.delayed[:0:0]
	for _, u := range a.delayed {
		if done, result := settle(u); done {
			if result != nil {
				results = append(results, *result)
			}
			continue
		}
		u.delayedEpochs++
		kept = append(kept, u)
	}
	a.delayed = kept

	for _, u := range a.currentEpoch {
		if done, result := settle(u); done {
			if result != nil {
				results = append(results, *result)
			}
			continue
		}
		u.delayedEpochs++
		a.delayed = append(a.delayed, u)
	}
	a.currentEpoch = nil

	return results, nil
}

// settle probes a unit's task and decides whether it leaves the Action's
// bookkeeping this epoch. A terminal outcome (SUCCESS/FAILURE/ERROR) emits a
// result. IN_PROGRESS means the task itself finished running but the
// callable queried external state that is still running (§6.3: "each
// invocation is a fresh query") — the unit leaves bookkeeping with no
// result so the next Dispatch treats the token as eligible for a fresh
// query, rather than leaving it wedged on a task that will never run again.
// NOT_STARTED/QUERY_TIMEOUT mean the task is still literally executing, so
// the unit is neither settled nor dropped; the caller keeps it.
func settle(u *unit) (done bool, result *petri.ActionResult) {
	outcome := u.task.Status(0)
	switch outcome {
	case petri.Success, petri.Failure, petri.ActionFailed:
		return true, &petri.ActionResult{TokenID: u.token.ID(), Outcome: outcome}
	case petri.InProgress:
		return true, nil
	default: // NOT_STARTED, QUERY_TIMEOUT: task is still running
		return false, nil
	}
}
