package bnet

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Net owns the places and the ordered transition list for one configured
// net. A single mutex guards all mutation, released over the scheduler's
// epoch sleep, per spec §5.
type Net struct {
	mu          sync.Mutex
	id          string
	places      map[string]*Place
	placeOrder  []string
	transitions []*Transition
	log         *zap.Logger
}

// New wires already-built places and transitions into a Net, re-checking
// the cross-reference invariants that the config layer is expected to have
// already validated. logger may be nil, in which case a no-op logger is
// used.
func New(id string, places []*Place, transitions []*Transition, logger *zap.Logger) (*Net, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Net{
		id:     id,
		places: make(map[string]*Place, len(places)),
		log:    logger,
	}
	seen := make(map[string]bool, len(places))
	for _, p := range places {
		if seen[p.ID()] {
			return nil, fmt.Errorf("%w: duplicate place id %s", ErrConfigInvalid, p.ID())
		}
		seen[p.ID()] = true
		n.places[p.ID()] = p
		n.placeOrder = append(n.placeOrder, p.ID())
	}
	seenT := make(map[string]bool, len(transitions))
	for _, tr := range transitions {
		if seenT[tr.ID] {
			return nil, fmt.Errorf("%w: duplicate transition id %s", ErrConfigInvalid, tr.ID)
		}
		seenT[tr.ID] = true
		if err := tr.validate(); err != nil {
			return nil, err
		}
		for _, a := range append(append([]*Arc{}, tr.Inputs...), tr.Outputs...) {
			if _, ok := n.places[a.PlaceID]; !ok {
				return nil, fmt.Errorf("%w: transition %s references unknown place %s", ErrConfigInvalid, tr.ID, a.PlaceID)
			}
		}
	}
	n.transitions = transitions
	return n, nil
}

func (n *Net) ID() string { return n.id }

func (n *Net) transition(id string) *Transition {
	for _, tr := range n.transitions {
		if tr.ID == id {
			return tr
		}
	}
	return nil
}

// InsertToken builds a fresh token from the given blocks and inserts it
// into the named place. Duplicate block keys or an unknown place are
// RuntimeFault, not LogicInvariant: both are external-caller mistakes.
func (n *Net) InsertToken(placeID string, blocks map[string]Block) (*Token, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.places[placeID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown place %s", ErrRuntimeFault, placeID)
	}
	tok := NewToken()
	for k, v := range blocks {
		if err := tok.AddBlock(k, v); err != nil {
			return nil, err
		}
	}
	p.Insert(tok)
	return tok, nil
}

// Trigger fires a MANUAL transition on external request.
func (n *Net) Trigger(transitionID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	tr := n.transition(transitionID)
	if tr == nil {
		return fmt.Errorf("%w: unknown transition %s", ErrRuntimeFault, transitionID)
	}
	if tr.Mode != Manual {
		return fmt.Errorf("%w: transition %s is not MANUAL", ErrRuntimeFault, transitionID)
	}
	if !tr.Enabled(n.places) {
		return fmt.Errorf("%w: transition %s is not enabled", ErrRuntimeFault, transitionID)
	}
	return tr.Fire(n.places)
}

// Marking returns the per-place total token count.
func (n *Net) Marking() map[string]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	m := make(map[string]int, len(n.places))
	for id, p := range n.places {
		m[id] = p.CountTotal()
	}
	return m
}

// Snapshot returns the full per-place busy/available/outcome breakdown.
func (n *Net) Snapshot() map[string]PlaceSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]PlaceSnapshot, len(n.places))
	for id, p := range n.places {
		out[id] = p.Snapshot()
	}
	return out
}

// ExecuteActions runs the scheduler's dispatch phase: forward every
// active place's busy set to its dispatcher.
func (n *Net) ExecuteActions() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, id := range n.placeOrder {
		if err := n.places[id].ExecuteActions(); err != nil {
			n.log.Error("execute_actions failed", zap.String("place_id", id), zap.Error(err))
			return err
		}
	}
	return nil
}

// CollectResults runs the scheduler's collect phase: pull completed
// outcomes from every active place's dispatcher.
func (n *Net) CollectResults() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, id := range n.placeOrder {
		if err := n.places[id].CollectResults(); err != nil {
			n.log.Error("collect_results failed", zap.String("place_id", id), zap.Error(err))
			return err
		}
	}
	return nil
}

// PlaceTopology describes one place's identity and dispatch mode,
// independent of its current marking.
type PlaceTopology struct {
	ID     string
	Active bool
}

// TransitionTopology describes one transition's identity, mode and arcs,
// independent of the current marking.
type TransitionTopology struct {
	ID      string
	Mode    TransitionMode
	Inputs  []*Arc
	Outputs []*Arc
}

// Topology is a read-only snapshot of the net's structure, for rendering or
// introspection tools that have no business touching the marking.
type Topology struct {
	Places      []PlaceTopology
	Transitions []TransitionTopology
}

// Topology returns the net's static place/transition/arc structure.
func (n *Net) Topology() Topology {
	n.mu.Lock()
	defer n.mu.Unlock()
	t := Topology{Places: make([]PlaceTopology, 0, len(n.placeOrder))}
	for _, id := range n.placeOrder {
		t.Places = append(t.Places, PlaceTopology{ID: id, Active: n.places[id].Active()})
	}
	for _, tr := range n.transitions {
		t.Transitions = append(t.Transitions, TransitionTopology{
			ID: tr.ID, Mode: tr.Mode, Inputs: tr.Inputs, Outputs: tr.Outputs,
		})
	}
	return t
}

// FireAutoTransitions runs the scheduler's fire-auto phase: each AUTO
// transition fires at most once, in transition-list order. It returns the
// ids of the transitions that fired, in firing order.
func (n *Net) FireAutoTransitions() ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var fired []string
	for _, tr := range n.transitions {
		if tr.Mode != Auto {
			continue
		}
		if !tr.Enabled(n.places) {
			continue
		}
		if err := tr.Fire(n.places); err != nil {
			n.log.Error("auto-fire failed", zap.String("transition_id", tr.ID), zap.Error(err))
			return fired, err
		}
		fired = append(fired, tr.ID)
	}
	return fired, nil
}
