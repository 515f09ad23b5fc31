// Package parser implements a recursive-descent parser with
// panic-mode error recovery. Grounded on eval/parser.go's
// Parser struct (curr/peek cursor, expect/unexpected helpers), but
// laid out as fixed-precedence recursive descent rather than the
// teacher's Pratt-style dispatch tables, since the language grammar
// this parser implements is not itself a Pratt grammar beyond
// ordinary left-to-right binary-operator precedence.
package parser

import (
	"errors"

	"github.com/midbel/lox/internal/ast"
	"github.com/midbel/lox/internal/diagnostics"
	"github.com/midbel/lox/internal/token"
)

// errParse is the internal panic-mode signal: the point where it is
// created is also the point the diagnostic sink is told
// about the failure, so callers only need to propagate it and, at a
// declaration boundary, synchronize.
var errParse = errors.New("parse error")

type Parser struct {
	tokens  []token.Token
	current int
	sink    *diagnostics.Sink
}

func New(tokens []token.Token, sink *diagnostics.Sink) *Parser {
	return &Parser{tokens: tokens, sink: sink}
}

// Parse runs the program production: declaration* EOF.
func (p *Parser) Parse() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// --- declarations ---

func (p *Parser) declaration() (ast.Stmt, error) {
	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Ident, "Expect class name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftBrace, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	var methods []*ast.FunctionStmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		method, err := p.function("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method.(*ast.FunctionStmt))
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return &ast.ClassStmt{Name: name, Methods: methods}, nil
}

func (p *Parser) function(kind string) (ast.Stmt, error) {
	name, err := p.consume(token.Ident, "Expect "+kind+" name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftParen, "Expect '(' after "+kind+" name."); err != nil {
		return nil, err
	}
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			param, err := p.consume(token.Ident, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftBrace, "Expect '{' before "+kind+" body."); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) varDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Ident, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(token.Equal) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: name, Initializer: init}, nil
}

// --- statements ---

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.LeftBrace):
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Statements: stmts}, nil
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.Return):
		return p.returnStmt()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Stmt
	if p.match(token.Else) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Condition: cond, ThenBranch: then, ElseBranch: elseBranch}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Condition: cond, Body: body}, nil
}

// forStmt desugars `for (init; cond; incr) body` into a block holding
// init followed by a while loop.
func (p *Parser) forStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var (
		init ast.Stmt
		err  error
	)
	switch {
	case p.match(token.Semicolon):
		init = nil
	case p.match(token.Var):
		init, err = p.varDecl()
	default:
		init, err = p.exprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.BlockStmt{Statements: []ast.Stmt{body, &ast.ExpressionStmt{Expression: incr}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true}
	}
	body = &ast.WhileStmt{Condition: cond, Body: body}

	if init != nil {
		body = &ast.BlockStmt{Statements: []ast.Stmt{init, body}}
	}
	return body, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	keyword := p.previous()
	var (
		value ast.Expr
		err   error
	)
	if !p.check(token.Semicolon) {
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Keyword: keyword, Value: value}, nil
}

func (p *Parser) printStmt() (ast.Stmt, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Expression: value}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Expression: expr}, nil
}

// --- expressions ---

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment  → (call ".")? IDENT ("=" | "+=" | "-=" | "*=" | "/=") assignment | ternary
func (p *Parser) assignment() (ast.Expr, error) {
	left, err := p.ternary()
	if err != nil {
		return nil, err
	}

	op, isCompound := compoundOps[p.peek().Kind]
	if !p.check(token.Equal) && !isCompound {
		return left, nil
	}
	equals := p.advance()

	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if isCompound {
		value = &ast.Binary{Left: left, Operator: token.Token{Kind: op, Lexeme: opLexeme[op], Line: equals.Line}, Right: value}
	}

	switch target := left.(type) {
	case *ast.Variable:
		return &ast.Assign{Name: target.Name, Value: value}, nil
	case *ast.Get:
		return &ast.Set{Object: target.Object, Name: target.Name, Value: value}, nil
	default:
		p.sink.ErrorAt(equals, "Invalid assignment target.")
		return left, nil
	}
}

var compoundOps = map[token.Kind]token.Kind{
	token.PlusEqual:  token.Plus,
	token.MinusEqual: token.Minus,
	token.StarEqual:  token.Star,
	token.SlashEqual: token.Slash,
}

var opLexeme = map[token.Kind]string{
	token.Plus:  "+",
	token.Minus: "-",
	token.Star:  "*",
	token.Slash: "/",
}

// ternary is supplemented surface grammar (SPEC_FULL.md): a
// right-associative "cond ? then : else" sitting between assignment
// and logic_or.
func (p *Parser) ternary() (ast.Expr, error) {
	cond, err := p.logicOr()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Question) {
		return cond, nil
	}
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Colon, "Expect ':' in ternary expression."); err != nil {
		return nil, err
	}
	els, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) logicOr() (ast.Expr, error) {
	left, err := p.logicAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.Or) {
		op := p.previous()
		right, err := p.logicAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) logicAnd() (ast.Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.And) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binaryLevel(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binaryLevel(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) term() (ast.Expr, error) {
	return p.binaryLevel(p.factor, token.Minus, token.Plus)
}

func (p *Parser) factor() (ast.Expr, error) {
	return p.binaryLevel(p.unary, token.Slash, token.Star)
}

func (p *Parser) binaryLevel(next func() (ast.Expr, error), kinds ...token.Kind) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(kinds...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: op, Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LeftParen):
			expr, err = p.finishCall(expr)
		case p.match(token.Dot):
			var name token.Token
			name, err = p.consume(token.Ident, "Expect property name after '.'.")
			if err == nil {
				expr = &ast.Get{Object: expr, Name: name}
			}
		default:
			return expr, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Arguments: args}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}, nil
	case p.match(token.True):
		return &ast.Literal{Value: true}, nil
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}, nil
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}, nil
	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}, nil
	case p.match(token.Ident):
		return &ast.Variable{Name: p.previous()}, nil
	case p.match(token.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Expression: expr}, nil
	default:
		return nil, p.error(p.peek(), "Expect expression.")
	}
}

// --- cursor plumbing ---

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind token.Kind) bool {
	if p.atEnd() {
		return kind == token.EOF
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.error(p.peek(), message)
}

func (p *Parser) error(tok token.Token, message string) error {
	p.sink.ErrorAt(tok, message)
	return errParse
}

// synchronize discards tokens until it reaches a likely statement
// boundary, guaranteeing forward progress: it always advances past
// at least the token that caused the error.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
