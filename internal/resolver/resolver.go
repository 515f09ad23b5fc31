// Package resolver implements a static scope-analysis pass: a single
// forward walk over the AST that produces a side-table mapping each
// variable-reference expression to the number of enclosing lexical
// scopes the interpreter must traverse at
// runtime. New relative to the teacher repository (mule's eval/
// package has no resolution stage), but built in the same
// environment-chain vocabulary as internal/environment.
package resolver

import (
	"github.com/midbel/lox/internal/ast"
	"github.com/midbel/lox/internal/diagnostics"
	"github.com/midbel/lox/internal/token"
)

type functionType int

const (
	fnNone functionType = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classType int

const (
	classNone classType = iota
	classInClass
)

// Locals is the side-table: expression identity (pointer) to
// resolution depth (0 = innermost enclosing scope). Expressions
// absent from the table reference globals.
type Locals map[ast.Expr]int

// Resolver walks a fully-parsed program exactly once.
type Resolver struct {
	sink   *diagnostics.Sink
	scopes []map[string]bool
	locals Locals

	currentFunction functionType
	currentClass    classType
}

func New(sink *diagnostics.Sink) *Resolver {
	return &Resolver{sink: sink, locals: make(Locals)}
}

// Resolve resolves a whole program and returns the side-table. It may
// be called even after errors were reported; callers check
// sink.HadError() before trusting the result.
func (r *Resolver) Resolve(stmts []ast.Stmt) Locals {
	r.resolveStmts(stmts)
	return r.locals
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(n.Statements)
		r.endScope()
	case *ast.VarStmt:
		r.declare(n.Name)
		if n.Initializer != nil {
			r.resolveExpr(n.Initializer)
		}
		r.define(n.Name)
	case *ast.FunctionStmt:
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n, fnFunction)
	case *ast.ClassStmt:
		r.resolveClass(n)
	case *ast.ExpressionStmt:
		r.resolveExpr(n.Expression)
	case *ast.PrintStmt:
		r.resolveExpr(n.Expression)
	case *ast.IfStmt:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.ThenBranch)
		if n.ElseBranch != nil {
			r.resolveStmt(n.ElseBranch)
		}
	case *ast.WhileStmt:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.Body)
	case *ast.ReturnStmt:
		if r.currentFunction == fnNone {
			r.sink.ErrorAt(n.Keyword, "Can't return from top-level code.")
		}
		if n.Value != nil {
			if r.currentFunction == fnInitializer {
				r.sink.ErrorAt(n.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(n.Value)
		}
	}
}

func (r *Resolver) resolveClass(n *ast.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = classInClass
	defer func() { r.currentClass = enclosingClass }()

	r.declare(n.Name)
	r.define(n.Name)

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range n.Methods {
		fnType := fnMethod
		if method.Name.Lexeme == "init" {
			fnType = fnInitializer
		}
		r.resolveFunction(method, fnType)
	}

	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch n := expr.(type) {
	case *ast.Literal:
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; ok && !defined {
				r.sink.ErrorAt(n.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(n, n.Name.Lexeme)
	case *ast.Assign:
		r.resolveExpr(n.Value)
		r.resolveLocal(n, n.Name.Lexeme)
	case *ast.Binary:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Logical:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Unary:
		r.resolveExpr(n.Right)
	case *ast.Grouping:
		r.resolveExpr(n.Expression)
	case *ast.Call:
		r.resolveExpr(n.Callee)
		for _, arg := range n.Arguments {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(n.Object)
	case *ast.Set:
		r.resolveExpr(n.Value)
		r.resolveExpr(n.Object)
	case *ast.This:
		if r.currentClass == classNone {
			r.sink.ErrorAt(n.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n, "this")
	case *ast.Ternary:
		r.resolveExpr(n.Cond)
		r.resolveExpr(n.Then)
		r.resolveExpr(n.Else)
	}
}

func (r *Resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// unrecorded: interpreter will treat this as a global.
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks name as present-but-undefined in the innermost local
// scope only; globals are never declared this way and so can be
// redeclared freely.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.sink.ErrorAt(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}
