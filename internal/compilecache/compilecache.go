// Package compilecache memoizes the lex/parse/resolve pipeline across
// runs of the same unchanged source file. It is grounded on cache.go's
// unfinished `Cache` stub and go.mod's `go.etcd.io/bbolt` dependency
// from the teacher repository, neither of which the retrieved snippet
// actually wired to anything — this package gives bbolt the job its
// presence in go.mod implied.
//
// The cache stores compile artifacts only (a parsed-and-resolved
// program), never interpreter state, so reusing a cache hit across
// process runs changes nothing about program behavior: it is strictly
// a startup-latency optimization for cmd/lox's file-running mode.
package compilecache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/midbel/lox/internal/ast"
	"github.com/midbel/lox/internal/resolver"
)

var bucketName = []byte("programs")

func init() {
	// token.Token.Literal and ast.Literal.Value are both `any`; gob
	// needs every concrete type ever assigned to an interface field
	// registered up front, including these primitives.
	gob.Register(float64(0))
	gob.Register("")
	gob.Register(true)

	gob.Register(&ast.Literal{})
	gob.Register(&ast.Unary{})
	gob.Register(&ast.Binary{})
	gob.Register(&ast.Logical{})
	gob.Register(&ast.Grouping{})
	gob.Register(&ast.Variable{})
	gob.Register(&ast.Assign{})
	gob.Register(&ast.Call{})
	gob.Register(&ast.Get{})
	gob.Register(&ast.Set{})
	gob.Register(&ast.This{})
	gob.Register(&ast.Ternary{})
	gob.Register(&ast.ExpressionStmt{})
	gob.Register(&ast.PrintStmt{})
	gob.Register(&ast.VarStmt{})
	gob.Register(&ast.BlockStmt{})
	gob.Register(&ast.IfStmt{})
	gob.Register(&ast.WhileStmt{})
	gob.Register(&ast.FunctionStmt{})
	gob.Register(&ast.ReturnStmt{})
	gob.Register(&ast.ClassStmt{})
}

// Program is a fully lexed, parsed, and resolved compilation unit
// ready for the interpreter.
type Program struct {
	Statements []ast.Stmt
	Locals     resolver.Locals
}

// entry is the on-disk envelope. Locals cannot be stored as
// resolver.Locals (map[ast.Expr]int) directly: encoding/gob does not
// preserve pointer sharing across a struct's fields, so a Statements
// tree and a Locals map decoded from the same gob stream end up with
// two independent sets of pointers, and the resolver side-table's
// identity keys would never match a node in the decoded tree. Instead
// Locals is keyed by a position ID assigned by walking the AST in a
// fixed order (see exprIDs), which is recomputed identically on
// either side of the encode/decode boundary.
type entry struct {
	Statements []ast.Stmt
	Locals     map[uint64]int
}

// Cache is a bbolt-backed store of Program values keyed by the sha256
// of their source text. Opening a Cache creates the backing file if
// it does not already exist.
type Cache struct {
	db *bolt.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("compilecache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("compilecache: init bucket: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes source into the identifier used to look up or store its
// compiled Program.
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return fmt.Sprintf("%x", sum)
}

// Lookup returns the cached Program for key, if any. The returned
// Program's Locals is rebuilt against the freshly decoded Statements'
// own pointers, so it is safe to key into with the pointer-identity
// lookups internal/interp performs.
func (c *Cache) Lookup(key string) (Program, bool, error) {
	var (
		e     entry
		found bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return gob.NewDecoder(bytes.NewReader(raw)).Decode(&e)
	})
	if err != nil {
		return Program{}, false, fmt.Errorf("compilecache: lookup: %w", err)
	}
	if !found {
		return Program{}, false, nil
	}

	locals := make(resolver.Locals, len(e.Locals))
	id := uint64(0)
	walkStmts(e.Statements, func(expr ast.Expr) {
		if depth, ok := e.Locals[id]; ok {
			locals[expr] = depth
		}
		id++
	})
	return Program{Statements: e.Statements, Locals: locals}, true, nil
}

// Store saves prog under key, overwriting any previous entry.
func (c *Cache) Store(key string, prog Program) error {
	e := entry{Statements: prog.Statements, Locals: make(map[uint64]int, len(prog.Locals))}
	id := uint64(0)
	walkStmts(prog.Statements, func(expr ast.Expr) {
		if depth, ok := prog.Locals[expr]; ok {
			e.Locals[id] = depth
		}
		id++
	})

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&e); err != nil {
		return fmt.Errorf("compilecache: encode: %w", err)
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("compilecache: store: %w", err)
	}
	return nil
}

// walkStmts visits every expression node reachable from stmts, in a
// fixed structural order determined only by the shape of the tree
// (never by pointer value). Run once over the live AST at Store time
// and again over the freshly decoded AST at Lookup time, it assigns
// the same sequential ID to corresponding nodes in both trees even
// though the two trees never share a single pointer.
func walkStmts(stmts []ast.Stmt, visit func(ast.Expr)) {
	for _, s := range stmts {
		walkStmt(s, visit)
	}
}

func walkStmt(stmt ast.Stmt, visit func(ast.Expr)) {
	switch n := stmt.(type) {
	case *ast.ExpressionStmt:
		walkExpr(n.Expression, visit)
	case *ast.PrintStmt:
		walkExpr(n.Expression, visit)
	case *ast.VarStmt:
		if n.Initializer != nil {
			walkExpr(n.Initializer, visit)
		}
	case *ast.BlockStmt:
		walkStmts(n.Statements, visit)
	case *ast.IfStmt:
		walkExpr(n.Condition, visit)
		walkStmt(n.ThenBranch, visit)
		if n.ElseBranch != nil {
			walkStmt(n.ElseBranch, visit)
		}
	case *ast.WhileStmt:
		walkExpr(n.Condition, visit)
		walkStmt(n.Body, visit)
	case *ast.FunctionStmt:
		walkStmts(n.Body, visit)
	case *ast.ReturnStmt:
		if n.Value != nil {
			walkExpr(n.Value, visit)
		}
	case *ast.ClassStmt:
		for _, m := range n.Methods {
			walkStmt(m, visit)
		}
	}
}

func walkExpr(expr ast.Expr, visit func(ast.Expr)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch n := expr.(type) {
	case *ast.Unary:
		walkExpr(n.Right, visit)
	case *ast.Binary:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *ast.Logical:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *ast.Grouping:
		walkExpr(n.Expression, visit)
	case *ast.Assign:
		walkExpr(n.Value, visit)
	case *ast.Call:
		walkExpr(n.Callee, visit)
		for _, arg := range n.Arguments {
			walkExpr(arg, visit)
		}
	case *ast.Get:
		walkExpr(n.Object, visit)
	case *ast.Set:
		walkExpr(n.Object, visit)
		walkExpr(n.Value, visit)
	case *ast.Ternary:
		walkExpr(n.Cond, visit)
		walkExpr(n.Then, visit)
		walkExpr(n.Else, visit)
	}
}
