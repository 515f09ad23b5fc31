package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/midbel/lox/internal/diagnostics"
	"github.com/midbel/lox/internal/lexer"
	"github.com/midbel/lox/internal/parser"
	"github.com/midbel/lox/internal/resolver"
)

// run lexes, parses, resolves, and interprets source, returning
// stdout, the diagnostic sink's stderr text, and the sink itself for
// exit-code-style assertions. It mirrors cmd/lox's file-mode pipeline.
func run(t *testing.T, source string) (string, string, *diagnostics.Sink) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	sink := diagnostics.New(&stderr)

	tokens := lexer.New(source, sink).ScanTokens()
	stmts := parser.New(tokens, sink).Parse()
	if sink.HadError() {
		return stdout.String(), stderr.String(), sink
	}
	locals := resolver.New(sink).Resolve(stmts)
	if sink.HadError() {
		return stdout.String(), stderr.String(), sink
	}

	New(sink, &stdout).Interpret(stmts, locals)
	return stdout.String(), stderr.String(), sink
}

func TestPrintArithmetic(t *testing.T) {
	out, _, sink := run(t, `print 1 + 2;`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "3" {
		t.Fatalf("got %q", out)
	}
}

func TestStringConcatenationAndTypeMismatch(t *testing.T) {
	out, _, sink := run(t, `print "a" + "b";`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "ab" {
		t.Fatalf("got %q", out)
	}

	_, errOut, sink := run(t, `print 1 + "a";`)
	if !sink.HadRuntimeError() {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(errOut, "Operands must be two numbers or two strings.") {
		t.Fatalf("got %q", errOut)
	}
	if !strings.Contains(errOut, "[line 1]") {
		t.Fatalf("expected line-1 attribution, got %q", errOut)
	}
}

func TestClosureCapturesDefiningEnvironment(t *testing.T) {
	out, _, sink := run(t, `
		fun makeCounter() {
			var i = 0;
			fun count() {
				i = i + 1;
				print i;
			}
			return count;
		}
		var c = makeCounter();
		c(); c(); c();
	`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "1\n2\n3" {
		t.Fatalf("got %q", out)
	}
}

func TestScopingWithShadowing(t *testing.T) {
	out, _, sink := run(t, `
		var a = "global";
		{
			var a = "outer";
			{
				var a = "inner";
				print a;
			}
			print a;
		}
		print a;
	`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "inner\nouter\nglobal" {
		t.Fatalf("got %q", out)
	}
}

func TestForLoopDesugaring(t *testing.T) {
	out, _, sink := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "0\n1\n2" {
		t.Fatalf("got %q", out)
	}
}

func TestShortCircuitOr(t *testing.T) {
	out, _, sink := run(t, `
		fun sideEffect() { print "called"; return true; }
		print true or sideEffect();
	`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.Contains(out, "called") {
		t.Fatal("the right operand of a truthy 'or' must not be evaluated")
	}
}

func TestShortCircuitAnd(t *testing.T) {
	out, _, sink := run(t, `
		fun sideEffect() { print "called"; return true; }
		print false and sideEffect();
	`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.Contains(out, "called") {
		t.Fatal("the right operand of a falsey 'and' must not be evaluated")
	}
}

func TestClassInstanceFieldsAndMethods(t *testing.T) {
	out, _, sink := run(t, `
		class Cake {
			init(flavor) { this.flavor = flavor; }
			describe() { print "a " + this.flavor + " cake"; }
		}
		var c = Cake("chocolate");
		c.describe();
	`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "a chocolate cake" {
		t.Fatalf("got %q", out)
	}
}

func TestCallArityMismatch(t *testing.T) {
	_, errOut, sink := run(t, `
		fun f(a, b) { return a + b; }
		f(1);
	`)
	if !sink.HadRuntimeError() {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(errOut, "Expected 2 arguments but got 1.") {
		t.Fatalf("got %q", errOut)
	}
}

func TestCallingANonCallable(t *testing.T) {
	_, errOut, sink := run(t, `
		var x = 1;
		x();
	`)
	if !sink.HadRuntimeError() {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(errOut, "Can only call functions and classes.") {
		t.Fatalf("got %q", errOut)
	}
}

func TestUndefinedPropertyAccess(t *testing.T) {
	_, errOut, sink := run(t, `
		class Empty {}
		var e = Empty();
		print e.missing;
	`)
	if !sink.HadRuntimeError() {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(errOut, "Undefined property 'missing'.") {
		t.Fatalf("got %q", errOut)
	}
}

func TestTernaryExpression(t *testing.T) {
	out, _, sink := run(t, `print true ? "yes" : "no";`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "yes" {
		t.Fatalf("got %q", out)
	}
}

func TestCompoundAssignment(t *testing.T) {
	out, _, sink := run(t, `var x = 1; x += 4; print x;`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "5" {
		t.Fatalf("got %q", out)
	}
}

func TestNativeClockIsCallableWithZeroArity(t *testing.T) {
	out, _, sink := run(t, `print clock() >= 0;`)
	if sink.HadError() || sink.HadRuntimeError() {
		t.Fatalf("unexpected error")
	}
	if strings.TrimRight(out, "\n") != "true" {
		t.Fatalf("got %q", out)
	}
}

func TestRuntimeErrorAbortsRemainingTopLevelStatements(t *testing.T) {
	out, _, sink := run(t, `
		print 1;
		print 1 + "x";
		print "unreachable";
	`)
	if !sink.HadRuntimeError() {
		t.Fatal("expected a runtime error")
	}
	if strings.Contains(out, "unreachable") {
		t.Fatal("statements after a runtime error must not execute")
	}
}
