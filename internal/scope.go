package internal

import (
	"sort"

	"github.com/zephyrtronium/hslang/internal/token"
)

// Scope is a lexical scope: a mutable mapping of names to values linked to
// its enclosing scope. Scopes are shared by reference, so every closure
// holding a scope observes assignments made through any other holder.
type Scope struct {
	vars      map[string]Value
	enclosing *Scope
}

// NewScope creates an empty scope inside enclosing, which may be nil.
func NewScope(enclosing *Scope) *Scope {
	return &Scope{vars: make(map[string]Value), enclosing: enclosing}
}

// Enclosing returns the scope's parent, or nil for a root scope.
func (s *Scope) Enclosing() *Scope {
	return s.enclosing
}

// Define binds name in this scope, replacing any binding of the same name in
// this scope. Bindings in enclosing scopes are shadowed, not changed.
func (s *Scope) Define(name string, v Value) {
	s.vars[name] = v
}

// Lookup returns the value bound to name in this scope only.
func (s *Scope) Lookup(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Names returns the names bound in this scope in sorted order.
func (s *Scope) Names() []string {
	r := make([]string, 0, len(s.vars))
	for k := range s.vars {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// Get finds the nearest binding of name, searching outward.
func (s *Scope) Get(name token.Token) (Value, error) {
	for sc := s; sc != nil; sc = sc.enclosing {
		if v, ok := sc.vars[name.Lexeme]; ok {
			return v, nil
		}
	}
	return nil, EvalError(name, ErrUnresolved, "undefined variable %s", name.Lexeme)
}

// Assign changes the nearest binding of name, searching outward. It fails if
// no scope in the chain binds name.
func (s *Scope) Assign(name token.Token, v Value) error {
	for sc := s; sc != nil; sc = sc.enclosing {
		if _, ok := sc.vars[name.Lexeme]; ok {
			sc.vars[name.Lexeme] = v
			return nil
		}
	}
	return EvalError(name, ErrUnresolved, "assignment to undefined variable %s", name.Lexeme)
}

// ancestor returns the scope distance hops outward, or nil if the chain is
// shorter than that.
func (s *Scope) ancestor(distance int) *Scope {
	sc := s
	for i := 0; i < distance && sc != nil; i++ {
		sc = sc.enclosing
	}
	return sc
}

// GetAt returns the binding of name exactly distance hops outward.
func (s *Scope) GetAt(name token.Token, distance int) (Value, error) {
	if sc := s.ancestor(distance); sc != nil {
		if v, ok := sc.vars[name.Lexeme]; ok {
			return v, nil
		}
	}
	return nil, EvalError(name, ErrUnresolved, "undefined variable %s at distance %d", name.Lexeme, distance)
}

// AssignAt changes the binding of name exactly distance hops outward.
func (s *Scope) AssignAt(name token.Token, distance int, v Value) error {
	if sc := s.ancestor(distance); sc != nil {
		if _, ok := sc.vars[name.Lexeme]; ok {
			sc.vars[name.Lexeme] = v
			return nil
		}
	}
	return EvalError(name, ErrUnresolved, "assignment to undefined variable %s at distance %d", name.Lexeme, distance)
}

// ContainerAt finds the property container through which name is reached.
// distance is the resolved distance of a field reference, which counts hops
// to a method's parameter scope; the binding of sentinel (normally "this")
// is one scope further out, in the scope where the method was bound.
func (s *Scope) ContainerAt(name token.Token, distance int, sentinel string) (PropertyContainer, error) {
	sc := s.ancestor(distance + 1)
	if sc == nil {
		return nil, EvalError(name, ErrUnresolved, "no %s for field %s", sentinel, name.Lexeme)
	}
	v, ok := sc.vars[sentinel]
	if !ok {
		return nil, EvalError(name, ErrUnresolved, "no %s for field %s", sentinel, name.Lexeme)
	}
	c, ok := v.(PropertyContainer)
	if !ok {
		return nil, RuntimeErr(name, ErrType, "%s is a %s, not a property container", sentinel, TypeName(v))
	}
	return c, nil
}
