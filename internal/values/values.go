// Package values implements the runtime value sum type:
// nil, bool, float64, string, and (defined in internal/interp, which
// needs interpreter access to call them) function/class/instance
// callables. Represented as Go's `any` rather than the teacher's
// `Object` interface-per-type (eval/object.go) since the language's
// arithmetic surface is small enough that a type switch at each call
// site, the way eval/eval.go's evalBinary already dispatches on
// operator before operand kind, reads more directly than a method set
// duplicated across four concrete types.
package values

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is any of the runtime's primitive kinds or a Callable.
type Value = any

// Callable is satisfied by both native and user-defined functions and
// by classes (whose "call" constructs an instance). Concrete types
// live in internal/interp, which needs an *Interpreter to execute a
// user-defined function's body.
type Callable interface {
	Arity() int
	String() string
}

// IsTruthy reports the language's truthiness rule: nil and false are
// falsey, everything else — including 0 and "" — is truthy.
func IsTruthy(v Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// IsEqual implements the language's equality rule: nil == nil;
// structural equality on matching primitive kinds; false, without
// raising, for any cross-kind comparison.
func IsEqual(a, b Value) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return a == b
	}
}

// Stringify renders v the way `print` does: nil -> "nil"; numbers
// whose textual form ends in ".0" have that suffix stripped;
// everything else uses its natural string form.
func Stringify(v Value) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case float64:
		text := strconv.FormatFloat(t, 'f', -1, 64)
		return strings.TrimSuffix(text, ".0")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// TypeName returns a short, human name for v's kind. No runtime
// error message in this module uses it.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	default:
		return "value"
	}
}
