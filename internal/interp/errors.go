package interp

import "github.com/midbel/lox/internal/token"

// RuntimeError is the single user-visible runtime failure kind: it
// carries the offending token for line reporting and a human-readable
// message, and satisfies diagnostics.RuntimeErrorer.
type RuntimeError struct {
	Tok     token.Token
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func (e *RuntimeError) Token() token.Token { return e.Tok }

func newRuntimeError(tok token.Token, message string) *RuntimeError {
	return &RuntimeError{Tok: tok, Message: message}
}

// controlReturn is the internal non-local control-flow signal for
// `return`: modeled as a value threaded up through
// statement execution rather than a panic, so that every
// executeBlock along the way restores its environment on the way out
// simply by returning like any other error would make it do.
type controlReturn struct {
	value Value
}

func (c *controlReturn) Error() string { return "return" }
