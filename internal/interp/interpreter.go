// Package interp implements the tree-walking evaluator from spec
// §4.5: statement execution against a chain of lexical environments,
// first-class functions with closures, and classes with `this`.
// Grounded on eval/eval.go's `eval(node, env)` type switch, adapted
// from an expression-only AST (where even `if`/`while`/blocks are
// Expression nodes) to the specification's statement/expression
// split, and from eval.go's sentinel-error control flow
// (errBreak/errContinue/errReturn via errors.Is) to a single
// controlReturn signal, since this language has no loop-control
// statements.
package interp

import (
	"fmt"
	"io"
	"time"

	"github.com/midbel/lox/internal/ast"
	"github.com/midbel/lox/internal/diagnostics"
	"github.com/midbel/lox/internal/environment"
	"github.com/midbel/lox/internal/resolver"
	"github.com/midbel/lox/internal/token"
	"github.com/midbel/lox/internal/values"
)

// Interpreter walks a resolved program against a persistent globals
// environment. A single Interpreter can run multiple programs in
// sequence (the REPL case): each Interpret call reuses the same
// globals, so the REPL preserves a single persistent globals
// environment across lines.
type Interpreter struct {
	globals *environment.Environment
	env     *environment.Environment
	locals  resolver.Locals
	sink    *diagnostics.Sink
	out     io.Writer
}

// New creates an Interpreter whose `print` output goes to out and
// whose diagnostics are reported to sink. The globals environment is
// pre-populated with the native `clock`.
func New(sink *diagnostics.Sink, out io.Writer) *Interpreter {
	globals := environment.New(nil)
	globals.Define("clock", newNativeFunction("clock", 0, func(_ []Value) (Value, error) {
		return float64(time.Now().UnixNano()) / 1e9, nil
	}))
	return &Interpreter{globals: globals, env: globals, sink: sink, out: out}
}

// Interpret executes stmts using the resolution side-table locals. A
// runtime error aborts the remainder of the run — subsequent
// top-level statements are not executed from that run — and is
// reported through the sink; it does not panic the host process.
func (i *Interpreter) Interpret(stmts []ast.Stmt, locals resolver.Locals) {
	i.locals = locals
	for _, stmt := range stmts {
		if err := i.execute(stmt); err != nil {
			if rerr, ok := err.(*RuntimeError); ok {
				i.sink.RuntimeError(rerr)
			}
			return
		}
	}
}

func (i *Interpreter) execute(stmt ast.Stmt) error {
	switch n := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := i.evaluate(n.Expression)
		return err
	case *ast.PrintStmt:
		v, err := i.evaluate(n.Expression)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.out, values.Stringify(v))
		return nil
	case *ast.VarStmt:
		var (
			value Value
			err   error
		)
		if n.Initializer != nil {
			value, err = i.evaluate(n.Initializer)
			if err != nil {
				return err
			}
		}
		i.env.Define(n.Name.Lexeme, value)
		return nil
	case *ast.BlockStmt:
		return i.executeBlock(n.Statements, environment.New(i.env))
	case *ast.IfStmt:
		cond, err := i.evaluate(n.Condition)
		if err != nil {
			return err
		}
		switch {
		case values.IsTruthy(cond):
			return i.execute(n.ThenBranch)
		case n.ElseBranch != nil:
			return i.execute(n.ElseBranch)
		default:
			return nil
		}
	case *ast.WhileStmt:
		for {
			cond, err := i.evaluate(n.Condition)
			if err != nil {
				return err
			}
			if !values.IsTruthy(cond) {
				return nil
			}
			if err := i.execute(n.Body); err != nil {
				return err
			}
		}
	case *ast.FunctionStmt:
		i.env.Define(n.Name.Lexeme, newFunction(n, i.env, false))
		return nil
	case *ast.ReturnStmt:
		var (
			value Value
			err   error
		)
		if n.Value != nil {
			value, err = i.evaluate(n.Value)
			if err != nil {
				return err
			}
		}
		return &controlReturn{value: value}
	case *ast.ClassStmt:
		methods := make(map[string]*Function, len(n.Methods))
		for _, m := range n.Methods {
			methods[m.Name.Lexeme] = newFunction(m, i.env, m.Name.Lexeme == "init")
		}
		i.env.Define(n.Name.Lexeme, &Class{Name: n.Name.Lexeme, Methods: methods})
		return nil
	default:
		return newRuntimeError(token.Token{}, fmt.Sprintf("%T unsupported statement", stmt))
	}
}

// executeBlock runs stmts against env, restoring the previous
// environment on every exit path — normal completion, an early
// return, or a runtime error.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *environment.Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, stmt := range stmts {
		if err := i.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Grouping:
		return i.evaluate(n.Expression)
	case *ast.Variable:
		return i.lookupVariable(n.Name, n)
	case *ast.Assign:
		value, err := i.evaluate(n.Value)
		if err != nil {
			return nil, err
		}
		if err := i.assignVariable(n.Name, n, value); err != nil {
			return nil, err
		}
		return value, nil
	case *ast.Unary:
		return i.evalUnary(n)
	case *ast.Binary:
		return i.evalBinary(n)
	case *ast.Logical:
		return i.evalLogical(n)
	case *ast.Ternary:
		return i.evalTernary(n)
	case *ast.Call:
		return i.evalCall(n)
	case *ast.Get:
		return i.evalGet(n)
	case *ast.Set:
		return i.evalSet(n)
	case *ast.This:
		return i.lookupVariable(n.Keyword, n)
	default:
		return nil, newRuntimeError(token.Token{}, fmt.Sprintf("%T unsupported expression", expr))
	}
}

func (i *Interpreter) lookupVariable(name token.Token, expr ast.Expr) (Value, error) {
	if depth, ok := i.locals[expr]; ok {
		return i.env.GetAt(depth, name.Lexeme), nil
	}
	v, err := i.globals.GetGlobal(name.Lexeme)
	if err != nil {
		return nil, newRuntimeError(name, err.Error())
	}
	return v, nil
}

func (i *Interpreter) assignVariable(name token.Token, expr ast.Expr, value Value) error {
	if depth, ok := i.locals[expr]; ok {
		i.env.AssignAt(depth, name.Lexeme, value)
		return nil
	}
	if err := i.globals.AssignGlobal(name.Lexeme, value); err != nil {
		return newRuntimeError(name, err.Error())
	}
	return nil
}

func (i *Interpreter) evalUnary(n *ast.Unary) (Value, error) {
	right, err := i.evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Operator.Kind {
	case token.Minus:
		f, ok := right.(float64)
		if !ok {
			return nil, newRuntimeError(n.Operator, "Operand must be a number.")
		}
		return -f, nil
	case token.Bang:
		return !values.IsTruthy(right), nil
	default:
		return nil, newRuntimeError(n.Operator, "Unsupported unary operator.")
	}
}

func (i *Interpreter) evalBinary(n *ast.Binary) (Value, error) {
	left, err := i.evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Operator.Kind {
	case token.Plus:
		if lf, ok := left.(float64); ok {
			if rf, ok := right.(float64); ok {
				return lf + rf, nil
			}
		}
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
		return nil, newRuntimeError(n.Operator, "Operands must be two numbers or two strings.")
	case token.Minus:
		lf, rf, err := numberOperands(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return lf - rf, nil
	case token.Star:
		lf, rf, err := numberOperands(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return lf * rf, nil
	case token.Slash:
		lf, rf, err := numberOperands(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return lf / rf, nil
	case token.Greater:
		lf, rf, err := numberOperands(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return lf > rf, nil
	case token.GreaterEqual:
		lf, rf, err := numberOperands(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return lf >= rf, nil
	case token.Less:
		lf, rf, err := numberOperands(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return lf < rf, nil
	case token.LessEqual:
		lf, rf, err := numberOperands(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return lf <= rf, nil
	case token.BangEqual:
		return !values.IsEqual(left, right), nil
	case token.EqualEqual:
		return values.IsEqual(left, right), nil
	default:
		return nil, newRuntimeError(n.Operator, "Unsupported binary operator.")
	}
}

func numberOperands(operator token.Token, left, right Value) (float64, float64, error) {
	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, newRuntimeError(operator, "Operands must be numbers.")
	}
	return lf, rf, nil
}

// evalLogical implements short-circuiting: `or` returns the left
// operand if truthy, else the (evaluated) right; `and` returns the
// left if falsey, else the right. The value returned is the operand
// itself, not a coerced boolean.
func (i *Interpreter) evalLogical(n *ast.Logical) (Value, error) {
	left, err := i.evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	if n.Operator.Kind == token.Or {
		if values.IsTruthy(left) {
			return left, nil
		}
	} else {
		if !values.IsTruthy(left) {
			return left, nil
		}
	}
	return i.evaluate(n.Right)
}

func (i *Interpreter) evalTernary(n *ast.Ternary) (Value, error) {
	cond, err := i.evaluate(n.Cond)
	if err != nil {
		return nil, err
	}
	if values.IsTruthy(cond) {
		return i.evaluate(n.Then)
	}
	return i.evaluate(n.Else)
}

func (i *Interpreter) evalCall(n *ast.Call) (Value, error) {
	callee, err := i.evaluate(n.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(n.Arguments))
	for _, argExpr := range n.Arguments {
		v, err := i.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(callable)
	if !ok {
		return nil, newRuntimeError(n.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, newRuntimeError(n.Paren, fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
	}
	return fn.call(i, args)
}

func (i *Interpreter) evalGet(n *ast.Get) (Value, error) {
	obj, err := i.evaluate(n.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, newRuntimeError(n.Name, "Only instances have properties.")
	}
	return instance.Get(n.Name)
}

func (i *Interpreter) evalSet(n *ast.Set) (Value, error) {
	obj, err := i.evaluate(n.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, newRuntimeError(n.Name, "Only instances have fields.")
	}
	value, err := i.evaluate(n.Value)
	if err != nil {
		return nil, err
	}
	instance.Set(n.Name, value)
	return value, nil
}
