package interp

import "github.com/midbel/lox/internal/values"

// Value is the runtime value alias used throughout this package.
type Value = values.Value

// callable is satisfied by native functions, user-defined functions,
// and classes (whose "call" constructs an instance). It embeds
// values.Callable (Arity/String) so a callable also satisfies the
// value-introspection surface the rest of the interpreter uses.
type callable interface {
	values.Callable
	call(interp *Interpreter, args []Value) (Value, error)
}
