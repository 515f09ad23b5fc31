// Package environment implements the scoped variable-binding chain.
// Grounded on env/env.go and environ/environ.go's
// generic `Env[T any]` + parent-pointer map, collapsed to a single
// concrete type since runtime values here are a closed sum type
// (values.Value) rather than an arbitrary type parameter.
package environment

import (
	"fmt"

	"github.com/midbel/lox/internal/values"
)

// Environment is a mapping from identifier to value with an optional
// parent link. The chain is genuinely shared: a function's closure
// environment is retained by every call made through that function,
// and mutation through any live reference is immediately visible to
// every other holder of that reference.
type Environment struct {
	parent *Environment
	values map[string]values.Value
}

// New creates a new environment enclosed by parent. Passing a nil
// parent creates the globals environment.
func New(parent *Environment) *Environment {
	return &Environment{parent: parent, values: make(map[string]values.Value)}
}

// Define inserts or overwrites name in this environment only.
func (e *Environment) Define(name string, value values.Value) {
	e.values[name] = value
}

// GetAt follows parent links exactly depth times, then fetches name.
// The resolver guarantees the binding is present; a miss is a bug in
// the resolver/interpreter agreement, not a user-facing error.
func (e *Environment) GetAt(depth int, name string) values.Value {
	v, ok := e.ancestor(depth).values[name]
	if !ok {
		panic(fmt.Sprintf("environment: resolver depth %d has no binding %q", depth, name))
	}
	return v
}

// AssignAt follows parent links exactly depth times, then overwrites
// name there.
func (e *Environment) AssignAt(depth int, name string, value values.Value) {
	e.ancestor(depth).values[name] = value
}

func (e *Environment) ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth; i++ {
		env = env.parent
	}
	return env
}

// Global walks to the root of the chain.
func (e *Environment) Global() *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}
	return env
}

// GetGlobal fetches name from the globals root; a missing name raises
// spec's "Undefined variable 'name'." error text.
func (e *Environment) GetGlobal(name string) (values.Value, error) {
	root := e.Global()
	v, ok := root.values[name]
	if !ok {
		return nil, fmt.Errorf("Undefined variable '%s'.", name)
	}
	return v, nil
}

// AssignGlobal overwrites name on the globals root; a missing name
// raises the same "Undefined variable" error rather than defining it.
func (e *Environment) AssignGlobal(name string, value values.Value) error {
	root := e.Global()
	if _, ok := root.values[name]; !ok {
		return fmt.Errorf("Undefined variable '%s'.", name)
	}
	root.values[name] = value
	return nil
}
