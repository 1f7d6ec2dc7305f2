package bnet

import "fmt"

// TransitionMode selects whether a transition is a candidate for auto-firing
// or must be fired by an explicit external request.
type TransitionMode string

const (
	Auto   TransitionMode = "AUTO"
	Manual TransitionMode = "MANUAL"
)

// Transition is an atomic consume-merge-project rule, per spec §4.6.
type Transition struct {
	ID      string
	Mode    TransitionMode
	Inputs  []*Arc
	Outputs []*Arc
}

func (tr *Transition) String() string { return tr.ID }

// Enabled reports whether every input arc's place currently has at least
// one available token matching that arc's outcome filter. Output capacity
// is unbounded, so outputs never affect enabledness.
func (tr *Transition) Enabled(places map[string]*Place) bool {
	for _, a := range tr.Inputs {
		p, ok := places[a.PlaceID]
		if !ok || p.CountAvailable(a.OutcomeFilter) < 1 {
			return false
		}
	}
	return true
}

// Fire executes the consume → merge → project algorithm in §4.6. Callers
// must already hold whatever lock serializes net mutation (Net does this);
// Fire itself performs no locking.
func (tr *Transition) Fire(places map[string]*Place) error {
	consumed := make([]*Token, 0, len(tr.Inputs))
	for _, a := range tr.Inputs {
		p, ok := places[a.PlaceID]
		if !ok {
			return fmt.Errorf("%w: transition %s input references unknown place %s", ErrLogicInvariant, tr.ID, a.PlaceID)
		}
		tok, ok := p.Consume(a.OutcomeFilter)
		if !ok {
			return fmt.Errorf("%w: transition %s fired while input %s was not enabled", ErrLogicInvariant, tr.ID, a.PlaceID)
		}
		consumed = append(consumed, tok)
	}

	out := NewToken()
	for _, c := range consumed {
		if err := out.MergeBlocks(c); err != nil {
			return fmt.Errorf("%w: transition %s: %v", ErrLogicInvariant, tr.ID, err)
		}
	}

	for _, a := range tr.Outputs {
		p, ok := places[a.PlaceID]
		if !ok {
			return fmt.Errorf("%w: transition %s output references unknown place %s", ErrLogicInvariant, tr.ID, a.PlaceID)
		}
		var produced *Token
		if a.ContentFilter == nil {
			// Arcs without a content filter share the identical output
			// token object, per spec §4.6.
			produced = out
		} else {
			produced = out.Clone()
			produced.FilterBlocks(a.ContentFilter.MatchString)
		}
		p.Insert(produced)
	}
	return nil
}

// validate enforces the §3/§6.1 transition-level invariants: at least one
// input arc, and no two arcs of the same direction referencing the same
// place.
func (tr *Transition) validate() error {
	if len(tr.Inputs) == 0 {
		return fmt.Errorf("%w: transition %s has no input arcs", ErrConfigInvalid, tr.ID)
	}
	seen := make(map[string]bool, len(tr.Inputs))
	for _, a := range tr.Inputs {
		if seen[a.PlaceID] {
			return fmt.Errorf("%w: transition %s has two input arcs on place %s", ErrConfigInvalid, tr.ID, a.PlaceID)
		}
		seen[a.PlaceID] = true
	}
	seen = make(map[string]bool, len(tr.Outputs))
	for _, a := range tr.Outputs {
		if seen[a.PlaceID] {
			return fmt.Errorf("%w: transition %s has two output arcs on place %s", ErrConfigInvalid, tr.ID, a.PlaceID)
		}
		seen[a.PlaceID] = true
	}
	return nil
}
