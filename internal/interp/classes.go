package interp

import (
	"github.com/midbel/lox/internal/token"
)

// Class is a runtime class value: a name and its own methods, bound
// to instances on lookup. The grammar has no superclass clause, so
// single inheritance is left unimplemented here — there is no syntax
// to reach it.
type Class struct {
	Name    string
	Methods map[string]*Function
}

func (c *Class) Arity() int {
	if init, ok := c.Methods["init"]; ok {
		return init.Arity()
	}
	return 0
}

func (c *Class) String() string { return c.Name }

func (c *Class) findMethod(name string) (*Function, bool) {
	m, ok := c.Methods[name]
	return m, ok
}

func (c *Class) call(interp *Interpreter, args []Value) (Value, error) {
	instance := &Instance{class: c, fields: make(map[string]Value)}
	if init, ok := c.findMethod("init"); ok {
		if _, err := init.bind(instance).call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a runtime object: an identity, its own fields, and the
// class it was constructed from. Equality on instances is identity.
type Instance struct {
	class  *Class
	fields map[string]Value
}

func (i *Instance) String() string { return i.class.Name + " instance" }

// Get implements property lookup: fields shadow methods, and a method
// lookup binds "this" to the receiver.
func (i *Instance) Get(name token.Token) (Value, error) {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v, nil
	}
	if method, ok := i.class.findMethod(name.Lexeme); ok {
		return method.bind(i), nil
	}
	return nil, newRuntimeError(name, "Undefined property '"+name.Lexeme+"'.")
}

func (i *Instance) Set(name token.Token, value Value) {
	i.fields[name.Lexeme] = value
}
