// Command lox runs the language's REPL or a script file.
// Grounded on cmd/mule/main.go and cmd/eval/main.go's flag-based
// main() and os.Exit-driven error handling.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/midbel/lox/internal/compilecache"
	"github.com/midbel/lox/internal/diagnostics"
	"github.com/midbel/lox/internal/interp"
	"github.com/midbel/lox/internal/lexer"
	"github.com/midbel/lox/internal/parser"
	"github.com/midbel/lox/internal/resolver"
)

func main() {
	cacheDir := flag.String("cache", "", "directory for the compile cache (empty disables caching)")
	flag.Parse()

	args := flag.Args()
	switch len(args) {
	case 0:
		runPrompt()
	case 1:
		if err := runFile(args[0], *cacheDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Usage: %s [script]\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}
}

// runFile executes a single script and exits 1 if compilation or
// execution failed.
func runFile(path string, cacheDir string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	sink := diagnostics.New(os.Stderr)
	interpreter := interp.New(sink, os.Stdout)

	prog, err := compileWithCache(string(source), sink, cacheDir)
	if err != nil {
		return err
	}
	if sink.HadError() {
		os.Exit(1)
	}

	interpreter.Interpret(prog.Statements, prog.Locals)
	if sink.HadRuntimeError() {
		os.Exit(1)
	}
	return nil
}

// compileWithCache lexes, parses, and resolves source, consulting the
// on-disk compile cache when cacheDir is non-empty. A cache miss (or
// caching disabled) always falls through to compiling from scratch.
// Open and store errors are logged and a failed lookup is treated as
// a miss; none of them abort the run, since the cache is purely a
// speed optimization (SPEC_FULL.md DOMAIN STACK).
func compileWithCache(source string, sink *diagnostics.Sink, cacheDir string) (compilecache.Program, error) {
	if cacheDir == "" {
		return compile(source, sink), nil
	}

	cache, err := compilecache.Open(filepath.Join(cacheDir, "lox-compile-cache.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile cache unavailable:", err)
		return compile(source, sink), nil
	}
	defer cache.Close()

	key := compilecache.Key(source)
	if prog, ok, err := cache.Lookup(key); err == nil && ok {
		return prog, nil
	}

	prog := compile(source, sink)
	if !sink.HadError() {
		if err := cache.Store(key, prog); err != nil {
			fmt.Fprintln(os.Stderr, "compile cache store failed:", err)
		}
	}
	return prog, nil
}

func compile(source string, sink *diagnostics.Sink) compilecache.Program {
	tokens := lexer.New(source, sink).ScanTokens()
	stmts := parser.New(tokens, sink).Parse()
	if sink.HadError() {
		return compilecache.Program{Statements: stmts}
	}
	locals := resolver.New(sink).Resolve(stmts)
	return compilecache.Program{Statements: stmts, Locals: locals}
}

// runPrompt implements the interactive REPL: one line at a time,
// resetting the sink's error flags between lines so a mistake on one
// line never poisons the next, and never using the compile cache
// since each line is unique source (SPEC_FULL.md DOMAIN STACK).
func runPrompt() {
	sink := diagnostics.New(os.Stderr)
	interpreter := interp.New(sink, os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			return
		}

		sink.Reset()
		tokens := lexer.New(line, sink).ScanTokens()
		stmts := parser.New(tokens, sink).Parse()
		if sink.HadError() {
			continue
		}

		locals := resolver.New(sink).Resolve(stmts)
		if sink.HadError() {
			continue
		}

		interpreter.Interpret(stmts, locals)
	}
}
