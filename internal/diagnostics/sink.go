// Package diagnostics is the shared collaborator every pipeline stage
// reports errors through. It replaces the process-wide static flags
// the source material models this on with an injected, short-lived
// session object.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/midbel/lox/internal/token"
)

// Sink accumulates lexical, syntactic, resolution, and runtime errors
// for a single pipeline run and formats them per the stable wire
// format: "[line L] Error<where>: <message>" for compile-time errors,
// "<message>\n[line L]" for runtime errors.
type Sink struct {
	out io.Writer

	hadError        bool
	hadRuntimeError bool
}

// New returns a Sink writing diagnostics to w.
func New(w io.Writer) *Sink {
	return &Sink{out: w}
}

// Error reports a lexical or syntactic error with no specific token.
func (s *Sink) Error(line int, message string) {
	s.report(line, "", message)
}

// ErrorAt reports a syntactic or resolution error against tok.
func (s *Sink) ErrorAt(tok token.Token, message string) {
	if tok.Kind == token.EOF {
		s.report(tok.Line, " at end", message)
		return
	}
	s.report(tok.Line, fmt.Sprintf(" at '%s'", tok.Lexeme), message)
}

func (s *Sink) report(line int, where, message string) {
	fmt.Fprintf(s.out, "[line %d] Error%s: %s\n", line, where, message)
	s.hadError = true
}

// RuntimeErrorer is the minimal interface a runtime error must
// satisfy to be reported: a message and the token whose line should
// be attributed to it. internal/interp.RuntimeError implements it.
type RuntimeErrorer interface {
	error
	Token() token.Token
}

// RuntimeError reports a runtime failure and sets the runtime-error
// flag consulted for file-mode exit codes.
func (s *Sink) RuntimeError(err RuntimeErrorer) {
	fmt.Fprintf(s.out, "%s\n[line %d]\n", err.Error(), err.Token().Line)
	s.hadRuntimeError = true
}

// HadError reports whether any lexical, syntactic, or resolution
// error has been recorded since the last Reset.
func (s *Sink) HadError() bool { return s.hadError }

// HadRuntimeError reports whether a runtime error has been recorded
// since the last Reset.
func (s *Sink) HadRuntimeError() bool { return s.hadRuntimeError }

// Reset clears both flags. The REPL calls this between lines so a
// mistake on one line does not poison the next.
func (s *Sink) Reset() {
	s.hadError = false
	s.hadRuntimeError = false
}
