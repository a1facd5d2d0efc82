package runtime

import (
	"fmt"
	"sort"
)

// Environment provides lexical scoping for runtime values. Frames are built
// whole by Extend and never change afterwards; only a root frame accepts
// Define, and only while its owner is still loading.
type Environment struct {
	values map[string]Value
	parent *Environment
	sealed bool
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

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) error {
	if e.sealed {
		return fmt.Errorf("environment is sealed; cannot define '%s'", name)
	}
	e.values[name] = value
	return nil
}

// Seal freezes the frame against further Define calls.
func (e *Environment) Seal() {
	e.sealed = true
}

// Sealed reports whether Seal was called.
func (e *Environment) Sealed() bool {
	return e.sealed
}

// Lookup retrieves a binding, searching outward through the scope chain.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether name is bound in this frame, ignoring parents.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Keys returns the bindings of this frame in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a sealed child frame binding names[i] to values[i].
func (e *Environment) Extend(names []string, values []Value) *Environment {
	child := &Environment{
		values: make(map[string]Value, len(names)),
		parent: e,
		sealed: true,
	}
	for idx, name := range names {
		if idx < len(values) {
			child.values[name] = values[idx]
		}
	}
	return child
}

// Bind is Extend for a single binding.
func (e *Environment) Bind(name string, value Value) *Environment {
	return e.Extend([]string{name}, []Value{value})
}

// Depth counts the frames from e up to the root.
func (e *Environment) Depth() int {
	n := 0
	for env := e; env != nil; env = env.parent {
		n++
	}
	return n
}
