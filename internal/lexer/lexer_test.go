package lexer

import (
	"bytes"
	"testing"

	"github.com/midbel/lox/internal/diagnostics"
	"github.com/midbel/lox/internal/token"
)

func scan(t *testing.T, source string) ([]token.Token, *diagnostics.Sink) {
	t.Helper()
	var buf bytes.Buffer
	sink := diagnostics.New(&buf)
	return New(source, sink).ScanTokens(), sink
}

func TestScanTokensAlwaysEndsInEOF(t *testing.T) {
	cases := []string{"", "   \n\n", "1 + 2;", "// comment only\n"}
	for _, src := range cases {
		tokens, _ := scan(t, src)
		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
			t.Fatalf("source %q: expected trailing EOF, got %v", src, tokens)
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	tokens, sink := scan(t, "(){},.-+;*!!====<<=>>=")
	if sink.HadError() {
		t.Fatalf("unexpected lexical error")
	}
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon, token.Star,
		token.Bang, token.BangEqual, token.EqualEqual, token.Equal, token.Less, token.LessEqual,
		token.Greater, token.GreaterEqual, token.EOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Kind, k)
		}
	}
}

func TestScanCompoundAssignment(t *testing.T) {
	tokens, _ := scan(t, "+= -= *= /=")
	want := []token.Kind{token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual, token.EOF}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Kind, k)
		}
	}
}

func TestScanLineComment(t *testing.T) {
	tokens, sink := scan(t, "1 // trailing comment\n2")
	if sink.HadError() {
		t.Fatal("unexpected error")
	}
	if len(tokens) != 3 || tokens[0].Kind != token.Number || tokens[1].Kind != token.Number {
		t.Fatalf("got %v", tokens)
	}
	if tokens[1].Line != 2 {
		t.Errorf("second number should be on line 2, got %d", tokens[1].Line)
	}
}

func TestScanString(t *testing.T) {
	tokens, sink := scan(t, `"hello world"`)
	if sink.HadError() {
		t.Fatal("unexpected error")
	}
	if tokens[0].Kind != token.String || tokens[0].Literal != "hello world" {
		t.Fatalf("got %+v", tokens[0])
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, sink := scan(t, `"never closed`)
	if !sink.HadError() {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestScanMultilineString(t *testing.T) {
	tokens, sink := scan(t, "\"a\nb\"\n1")
	if sink.HadError() {
		t.Fatal("unexpected error")
	}
	if tokens[0].Literal != "a\nb" {
		t.Fatalf("got %q", tokens[0].Literal)
	}
	if tokens[1].Line != 3 {
		t.Errorf("number after multiline string should be on line 3, got %d", tokens[1].Line)
	}
}

func TestScanNumber(t *testing.T) {
	tokens, _ := scan(t, "123 45.67 89.")
	if tokens[0].Literal != 123.0 {
		t.Errorf("got %v", tokens[0].Literal)
	}
	if tokens[1].Literal != 45.67 {
		t.Errorf("got %v", tokens[1].Literal)
	}
	// a trailing '.' is not consumed as part of the number
	if tokens[2].Literal != 89.0 {
		t.Errorf("got %v", tokens[2].Literal)
	}
	if tokens[3].Kind != token.Dot {
		t.Errorf("expected a lone Dot token after 89, got %s", tokens[3].Kind)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	tokens, _ := scan(t, "class fun x_1")
	if tokens[0].Kind != token.Class || tokens[1].Kind != token.Fun {
		t.Fatalf("got %v", tokens)
	}
	if tokens[2].Kind != token.Ident || tokens[2].Lexeme != "x_1" {
		t.Fatalf("got %+v", tokens[2])
	}
}

func TestScanUnexpectedCharacterContinues(t *testing.T) {
	tokens, sink := scan(t, "1 @ 2")
	if !sink.HadError() {
		t.Fatal("expected a lexical error for '@'")
	}
	var numbers int
	for _, tok := range tokens {
		if tok.Kind == token.Number {
			numbers++
		}
	}
	if numbers != 2 {
		t.Fatalf("scanning should continue past the bad character, got %d numbers", numbers)
	}
}
