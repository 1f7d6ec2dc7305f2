package bnet

import (
	"fmt"
	"sync"
)

// ActionResult is one outcome emitted by a Dispatcher's Collect, identifying
// the token by id.
type ActionResult struct {
	TokenID string
	Outcome OutcomeKind
}

// Dispatcher is the Place-facing side of the per-place action layer
// (package action's Action type implements this). Defined here, rather than
// in package action, so Place can hold one without petri importing action.
type Dispatcher interface {
	// Dispatch launches work for the given busy tokens, returning once tasks
	// are submitted, not once they complete.
	Dispatch(busy []*Token) error
	// Collect drains the outcomes that are ready for outstanding tokens.
	// package action's Action reports only completed outcomes; Place
	// applies only completed ones and skips any others.
	Collect() ([]ActionResult, error)
}

type availableEntry struct {
	token   *Token
	outcome OutcomeKind
}

// Place is a named token container split into busy and available halves.
// A passive place (no dispatcher) delivers inserted tokens straight to
// available tagged SUCCESS; an active place routes them to busy and relies
// on its Dispatcher to report outcomes.
type Place struct {
	mu         sync.Mutex
	id         string
	dispatcher Dispatcher
	busy       []*Token
	available  []availableEntry
}

func NewPlace(id string) *Place {
	return &Place{id: id}
}

func (p *Place) ID() string     { return p.id }
func (p *Place) String() string { return p.id }

// SetDispatcher attaches an action dispatcher, making the place active.
// Passing nil makes the place passive.
func (p *Place) SetDispatcher(d Dispatcher) { p.dispatcher = d }

func (p *Place) Active() bool { return p.dispatcher != nil }

// Insert adds a freshly-created or externally-supplied token to the place,
// per spec §4.5: passive places tag it SUCCESS and make it available
// immediately; active places place it in busy for the next dispatch.
func (p *Place) Insert(t *Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t.setCurrentPlace(p.id)
	if p.dispatcher == nil {
		p.available = append(p.available, availableEntry{token: t, outcome: Success})
		return
	}
	p.busy = append(p.busy, t)
}

// ExecuteActions forwards the current busy set to the dispatcher.
func (p *Place) ExecuteActions() error {
	if p.dispatcher == nil {
		return nil
	}
	p.mu.Lock()
	busy := make([]*Token, len(p.busy))
	copy(busy, p.busy)
	p.mu.Unlock()
	return p.dispatcher.Dispatch(busy)
}

// CollectResults pulls completed outcomes from the dispatcher and migrates
// the corresponding tokens from busy to available.
func (p *Place) CollectResults() error {
	if p.dispatcher == nil {
		return nil
	}
	results, err := p.dispatcher.Collect()
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range results {
		if !r.Outcome.Completed() {
			continue
		}
		idx := -1
		for i, t := range p.busy {
			if t.ID() == r.TokenID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: collected outcome for token %s not found in busy set of place %s", ErrLogicInvariant, r.TokenID, p.id)
		}
		tok := p.busy[idx]
		p.busy = append(p.busy[:idx], p.busy[idx+1:]...)
		p.available = append(p.available, availableEntry{token: tok, outcome: r.Outcome})
	}
	return nil
}

func (p *Place) CountTotal() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.busy) + len(p.available)
}

func (p *Place) CountBusy() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.busy)
}

func (p *Place) CountAvailable(mask OutcomeSet) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(mask) == 0 {
		return len(p.available)
	}
	n := 0
	for _, e := range p.available {
		if mask.Matches(e.outcome) {
			n++
		}
	}
	return n
}

// Consume removes and returns the first available token whose outcome
// matches mask (empty mask matches any outcome).
func (p *Place) Consume(mask OutcomeSet) (*Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.available {
		if mask.Matches(e.outcome) {
			p.available = append(p.available[:i], p.available[i+1:]...)
			return e.token, true
		}
	}
	return nil, false
}

// PlaceSnapshot is the display/test-facing per-place summary in §4.7.
type PlaceSnapshot struct {
	ID        string               `json:"place_id"`
	Total     int                  `json:"total"`
	Busy      int                  `json:"busy"`
	Available int                  `json:"available"`
	ByOutcome map[OutcomeKind]int  `json:"by_outcome,omitempty"`
}

func (p *Place) Snapshot() PlaceSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PlaceSnapshot{
		ID:        p.id,
		Busy:      len(p.busy),
		Available: len(p.available),
	}
	s.Total = s.Busy + s.Available
	if len(p.available) > 0 {
		s.ByOutcome = make(map[OutcomeKind]int)
		for _, e := range p.available {
			s.ByOutcome[e.outcome]++
		}
	}
	return s
}
