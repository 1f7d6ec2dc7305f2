package bnet

import "errors"

// Error taxonomy kinds. These are sentinels, not a type hierarchy: wrap one
// of these with fmt.Errorf("%w: ...", ErrX) and callers discriminate with
// errors.Is.
var (
	// ErrConfigInvalid marks a validation failure discovered at net
	// construction. Fatal to construction, never seen once a net is running.
	ErrConfigInvalid = errors.New("config invalid")

	// ErrRuntimeFault marks a runtime misuse by an external caller: unknown
	// place/transition id, wrong mode on trigger, duplicate block key on
	// insertion. Surfaced to the caller; the engine keeps running.
	ErrRuntimeFault = errors.New("runtime fault")

	// ErrLogicInvariant marks an internal invariant violation. Fatal to the
	// operation that detects it and indicates a bug in the engine itself,
	// not in caller input.
	ErrLogicInvariant = errors.New("logic invariant violated")

	// ErrActionError marks an ERROR outcome reported by a user action. It is
	// a normal data-plane signal routed via outcome filters, not an engine
	// fault.
	ErrActionError = errors.New("action error")
)
