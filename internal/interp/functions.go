package interp

import (
	"fmt"

	"github.com/midbel/lox/internal/ast"
	"github.com/midbel/lox/internal/environment"
)

// Function is a user-defined, closure-carrying callable: it owns a
// reference to its declaring environment, its parameter list, and its
// body, with arity fixed at construction.
type Function struct {
	declaration   *ast.FunctionStmt
	closure       *environment.Environment
	isInitializer bool
}

func newFunction(decl *ast.FunctionStmt, closure *environment.Environment, isInitializer bool) *Function {
	return &Function{declaration: decl, closure: closure, isInitializer: isInitializer}
}

func (f *Function) Arity() int { return len(f.declaration.Params) }

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s>", f.declaration.Name.Lexeme)
}

// bind produces a copy of f whose closure additionally binds "this"
// to instance, one scope out from f's original closure. This is what
// makes a method lookup on an instance yield a bound callable.
func (f *Function) bind(instance *Instance) *Function {
	env := environment.New(f.closure)
	env.Define("this", instance)
	return newFunction(f.declaration, env, f.isInitializer)
}

func (f *Function) call(interp *Interpreter, args []Value) (Value, error) {
	env := environment.New(f.closure)
	for i, param := range f.declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	err := interp.executeBlock(f.declaration.Body, env)
	if err != nil {
		if ret, ok := err.(*controlReturn); ok {
			if f.isInitializer {
				return f.closure.GetAt(0, "this"), nil
			}
			return ret.value, nil
		}
		return nil, err
	}
	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	return nil, nil
}

// NativeFunction wraps a Go function as a callable of fixed arity,
// the way globals-seeded `clock` is implemented.
type NativeFunction struct {
	name  string
	arity int
	fn    func(args []Value) (Value, error)
}

func newNativeFunction(name string, arity int, fn func(args []Value) (Value, error)) *NativeFunction {
	return &NativeFunction{name: name, arity: arity, fn: fn}
}

func (n *NativeFunction) Arity() int { return n.arity }

func (n *NativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.name) }

func (n *NativeFunction) call(_ *Interpreter, args []Value) (Value, error) {
	return n.fn(args)
}
