package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Environment provides lexical scoping for Paw runtime values. Scopes are
// shared by reference: a closure that outlives its defining statement
// observes and mutates the same bindings as everyone else holding the
// chain. Each operation on one scope level is a single indivisible step;
// callers must never hold a binding across a suspension point, they copy
// values out instead.
type Environment struct {
	mu     sync.RWMutex
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or shadows a binding in the innermost scope only.
func (e *Environment) Define(name string, value Value) {
	e.mu.Lock()
	e.values[name] = value
	e.mu.Unlock()
}

// Assign mutates the first scope outward that already owns the name.
func (e *Environment) Assign(name string, value Value) error {
	e.mu.Lock()
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return fmt.Errorf("undefined variable '%s'", name)
}

// Get searches outward and returns the first match.
func (e *Environment) Get(name string) (Value, bool) {
	e.mu.RLock()
	if v, ok := e.values[name]; ok {
		e.mu.RUnlock()
		return v, true
	}
	e.mu.RUnlock()
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, false
}

// Snapshot returns a copy of this scope's own bindings, not inherited
// ones. Import uses it to seal a module's namespace.
func (e *Environment) Snapshot() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Keys returns this scope's own binding names in sorted order.
func (e *Environment) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend returns a fresh child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
