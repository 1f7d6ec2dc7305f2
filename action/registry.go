package action

import (
	"fmt"
	"sync"

	petri "github.com/bnetrun/bnet"
)

// ActionImpl is a user-supplied action implementation bound to a place.
// Callable is invoked once per dispatched task, on a worker goroutine; it
// must not touch net state directly (§5).
type ActionImpl interface {
	Callable(token *petri.Token) petri.OutcomeKind
}

// Factory builds an ActionImpl from its config parameters.
type Factory func(params map[string]interface{}) (ActionImpl, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register adds a (type_name, factory) pair to the process-wide registry,
// per spec §4.9. Implementations call this from an init(). Registering the
// same name twice is a programmer error and panics, mirroring the teacher's
// init()-time registration idioms elsewhere in the pack.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("action: factory already registered for type %q", name))
	}
	registry[name] = factory
}

// Registered reports whether name has a factory registered, for config
// validation to check action types before construction.
func Registered(name string) bool {
	registryMu.Lock()
	defer registryMu.Unlock()
	_, ok := registry[name]
	return ok
}

// Build resolves name to its factory and constructs an ActionImpl with
// params. Unknown names are a config error, not a logic invariant: they
// surface from net construction, before the net ever runs.
func Build(name string, params map[string]interface{}) (ActionImpl, error) {
	registryMu.Lock()
	factory, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no ActionImpl registered for type %q", petri.ErrConfigInvalid, name)
	}
	return factory(params)
}
