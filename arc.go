package bnet

import (
	"fmt"
	"regexp"
)

// ArcDirection is INPUT or OUTPUT, per spec §3.
type ArcDirection string

const (
	Input  ArcDirection = "INPUT"
	Output ArcDirection = "OUTPUT"
)

// Arc is a directed edge between a place and a transition.
type Arc struct {
	PlaceID   string
	Direction ArcDirection

	// OutcomeFilter applies to INPUT arcs only; nil/empty means any outcome.
	OutcomeFilter OutcomeSet

	// ContentFilter applies to OUTPUT arcs only; nil means no filtering
	// (the arc receives the full merged token).
	ContentFilter *regexp.Regexp
}

func (a *Arc) String() string {
	return fmt.Sprintf("%s:%s", a.Direction, a.PlaceID)
}

// NewInputArc builds an INPUT arc with an optional outcome filter.
func NewInputArc(placeID string, outcomeFilter OutcomeSet) *Arc {
	return &Arc{PlaceID: placeID, Direction: Input, OutcomeFilter: outcomeFilter}
}

// NewOutputArc builds an OUTPUT arc with an optional content filter.
func NewOutputArc(placeID string, contentFilter *regexp.Regexp) *Arc {
	return &Arc{PlaceID: placeID, Direction: Output, ContentFilter: contentFilter}
}
