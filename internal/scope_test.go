package internal_test

import (
	"errors"
	"testing"

	"github.com/zephyrtronium/hslang/internal"
	"github.com/zephyrtronium/hslang/internal/token"
)

func ident(name string) token.Token {
	return token.Token{Type: token.Identifier, Lexeme: name, Line: 1, Col: 1}
}

// TestScopeDefine tests that definitions shadow only within one scope.
func TestScopeDefine(t *testing.T) {
	outer := internal.NewScope(nil)
	inner := internal.NewScope(outer)
	outer.Define("x", 1.0)
	inner.Define("x", 2.0)
	if v, err := inner.Get(ident("x")); err != nil || v != 2.0 {
		t.Errorf("inner x: want 2, got %v (%v)", v, err)
	}
	if v, err := outer.Get(ident("x")); err != nil || v != 1.0 {
		t.Errorf("outer x: want 1, got %v (%v)", v, err)
	}
	inner.Define("x", 3.0)
	if v, _ := inner.Lookup("x"); v != 3.0 {
		t.Errorf("redefined x: want 3, got %v", v)
	}
	if inner.Enclosing() != outer {
		t.Error("wrong enclosing scope")
	}
}

// TestScopeAssign tests that assignments search outward and are shared by
// every holder of the scope.
func TestScopeAssign(t *testing.T) {
	outer := internal.NewScope(nil)
	a := internal.NewScope(outer)
	b := internal.NewScope(outer)
	outer.Define("x", 1.0)
	if err := a.Assign(ident("x"), 5.0); err != nil {
		t.Fatal(err)
	}
	if v, _ := b.Get(ident("x")); v != 5.0 {
		t.Errorf("assignment not shared: got %v", v)
	}
	if _, ok := a.Lookup("x"); ok {
		t.Error("assignment defined x in the inner scope")
	}
	err := a.Assign(ident("nope"), 1.0)
	if !errors.Is(err, internal.ErrUnresolved) {
		t.Errorf("assigning undefined: want ErrUnresolved, got %v", err)
	}
	var ex *internal.Exception
	if !errors.As(err, &ex) || ex.Kind != internal.EvaluationError {
		t.Errorf("assigning undefined: want evaluation error, got %#v", err)
	}
}

func TestScopeAt(t *testing.T) {
	s0 := internal.NewScope(nil)
	s1 := internal.NewScope(s0)
	s2 := internal.NewScope(s1)
	s0.Define("x", "s0")
	s1.Define("x", "s1")
	cases := map[string]struct {
		distance int
		want     internal.Value
		err      bool
	}{
		"Here":     {0, nil, true},
		"One":      {1, "s1", false},
		"Two":      {2, "s0", false},
		"TooFar":   {3, nil, true},
		"Negative": {-1, nil, true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			v, err := s2.GetAt(ident("x"), c.distance)
			if c.err {
				if err == nil {
					t.Errorf("no error getting at distance %d; got %v", c.distance, v)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if v != c.want {
				t.Errorf("want %v, got %v", c.want, v)
			}
		})
	}
	if err := s2.AssignAt(ident("x"), 2, "new"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s0.Lookup("x"); v != "new" {
		t.Errorf("AssignAt didn't change s0: got %v", v)
	}
	if v, _ := s1.Lookup("x"); v != "s1" {
		t.Errorf("AssignAt changed s1: got %v", v)
	}
	if err := s2.AssignAt(ident("x"), 0, "bad"); err == nil {
		t.Error("AssignAt defined a missing binding")
	}
}

// TestContainerAt tests that field access finds this one hop beyond the
// resolved distance.
func TestContainerAt(t *testing.T) {
	vm := internal.NewVM()
	class, err := vm.DoString(`class C { var f = 1; } C;`, "TestContainerAt")
	if err != nil {
		t.Fatal(err)
	}
	inst, err := vm.Call(class)
	if err != nil {
		t.Fatal(err)
	}
	bound := internal.NewScope(nil)
	bound.Define("this", inst)
	params := internal.NewScope(bound)
	block := internal.NewScope(params)

	c, err := block.ContainerAt(ident("f"), 1, "this")
	if err != nil {
		t.Fatal(err)
	}
	if v, err := c.Get(ident("f")); err != nil || v != 1.0 {
		t.Errorf("wrong field through container: %v (%v)", v, err)
	}
	if _, err := block.ContainerAt(ident("f"), 0, "this"); !errors.Is(err, internal.ErrUnresolved) {
		t.Errorf("container at params scope: want ErrUnresolved, got %v", err)
	}
	bound.Define("this", 1.0)
	if _, err := block.ContainerAt(ident("f"), 1, "this"); !errors.Is(err, internal.ErrType) {
		t.Errorf("non-container this: want ErrType, got %v", err)
	}
}

func TestScopeNames(t *testing.T) {
	s := internal.NewScope(nil)
	s.Define("b", nil)
	s.Define("a", nil)
	got := s.Names()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("wrong names: %v", got)
	}
}
