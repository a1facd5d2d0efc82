package typechecker

import "sort"

// Environment represents a lexical scope used during typechecking.
type Environment struct {
	parent  *Environment
	symbols map[string]Type
}

// NewEnvironment creates a new environment with an optional parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:  parent,
		symbols: make(map[string]Type),
	}
}

// Define binds a name to a type in the current scope.
func (e *Environment) Define(name string, typ Type) {
	e.symbols[name] = typ
}

// Lookup searches for a name in the current scope chain.
func (e *Environment) Lookup(name string) (Type, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if typ, ok := scope.symbols[name]; ok {
			return typ, true
		}
	}
	return nil, false
}

// Extend returns a child environment.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Names lists the names bound directly in this scope, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.symbols))
	for name := range e.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
