package runtime

import "fmt"

// Environment represents a variable scope with a parent chain.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds name in the current scope, shadowing any binding of the same
// name in a parent. Redefinition in the same scope overwrites.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Set updates the nearest scope that defines name. It fails with
// ErrUndefined when no scope does.
func (e *Environment) Set(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name]; exists {
			env.values[name] = value
			return nil
		}
	}
	return &RuntimeError{Kind: ErrUndefined, Message: fmt.Sprintf("undefined variable '%s'", name)}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Global returns the outermost scope of the chain.
func (e *Environment) Global() *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}
	return env
}
