package internal_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/zephyrtronium/hslang/internal"
)

func mustParse(t *testing.T, src string) *internal.Program {
	t.Helper()
	prog, err := internal.Parse(strings.NewReader(src), t.Name())
	if err != nil {
		t.Fatalf("couldn't parse %q: %v", src, err)
	}
	return prog
}

func TestResolveErrors(t *testing.T) {
	cases := map[string]string{
		"OwnInitializer":      `{ var a = a; }`,
		"Redeclare":           `{ var a; var a; }`,
		"RedeclareParam":      `fun f(a, a) {}`,
		"RedeclareFun":        `fun g() { var f; fun f() {} }`,
		"TopReturn":           `return 1;`,
		"ConstructorValue":    `class C { constructor() { return 1; } }`,
		"TopBreak":            `break;`,
		"FunBreak":            `while (true) { fun f() { break; } }`,
		"TopContinue":         `continue;`,
		"SwitchContinue":      `switch (1) { case 1: continue; }`,
		"TopThis":             `this;`,
		"FunThis":             `fun f() { return this; }`,
		"TopSuper":            `super.x;`,
		"SuperNoSuperclass":   `class C { fun f() { return super.f; } }`,
		"ExtendSelf":          `class C extends C {}`,
		"DuplicateField":      `class C { var a; var a; }`,
		"DuplicateMethod":     `class C { fun a() {} fun a() {} }`,
		"ThisInTest":          `class C { fun f() { test "x" { return this; } } }`,
		"BreakInTest":         `while (true) { test "x" { break; } }`,
		"NestedFunctionBreak": `for (;;) { fun f() { continue; } }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			prog := mustParse(t, src)
			err := internal.Resolve(prog)
			if err == nil {
				t.Fatalf("%q resolved without error", src)
			}
			if !errors.Is(err, internal.ErrSyntax) {
				t.Errorf("error doesn't wrap ErrSyntax: %v", err)
			}
			var ex *internal.Exception
			if !errors.As(err, &ex) {
				t.Fatalf("error isn't an exception: %#v", err)
			}
			if ex.Phase != internal.PhaseResolve || ex.Kind != internal.EvaluationError {
				t.Errorf("wrong phase or kind: %v %v", ex.Phase, ex.Kind)
			}
		})
	}
}

func TestResolveAccepts(t *testing.T) {
	cases := map[string]string{
		"GlobalRedeclare":    `var a = 1; var a = 2;`,
		"GlobalSelfInit":     `var a = 1; { var b = a; }`,
		"ShadowOuter":        `var a = 1; { var a = 2; { var a = 3; } }`,
		"ReturnInTest":       `test "t" { return true; }`,
		"BareConstructor":    `class C { constructor() { return; } }`,
		"BreakInSwitch":      `switch (1) { case 1: break; }`,
		"ContinueLoopSwitch": `while (false) { switch (1) { case 1: continue; } }`,
		"SuperInSubclass":    `class A { fun f() {} } class B extends A { fun f() { return super.f(); } }`,
		"ThisInInitializer":  `class C { var a = 1; var b = this.a; }`,
		"NestedClass":        `class A { fun f() { class B { fun g() { return this; } } return B; } }`,
		"RecursiveFun":       `{ fun f(n) { return n == 0 ? 0 : f(n - 1); } }`,
		"NonReservedNames":   `var module = 1; var native = 2; var dynamic = 3; var final = 4; var constructor = 5;`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			prog := mustParse(t, src)
			if err := internal.Resolve(prog); err != nil {
				t.Errorf("%q didn't resolve: %v", src, err)
			}
		})
	}
}

// TestResolveAll tests that the resolver reports every problem rather than
// stopping at the first.
func TestResolveAll(t *testing.T) {
	prog := mustParse(t, `break; continue; return;`)
	err := internal.Resolve(prog)
	u, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("error doesn't join multiple errors: %#v", err)
	}
	if n := len(u.Unwrap()); n != 3 {
		t.Errorf("want 3 errors, got %d: %v", n, err)
	}
}

// TestResolveDistances tests the distances the resolver writes into the
// syntax tree.
func TestResolveDistances(t *testing.T) {
	prog := mustParse(t, `
		var g;
		{
			var a;
			{
				a;
				g;
			}
		}
		class C {
			var f;
			fun m(p) {
				{ f; p; this; }
			}
		}
	`)
	if err := internal.Resolve(prog); err != nil {
		t.Fatal(err)
	}
	outer := prog.Stmts[1].(*internal.BlockStmt)
	inner := outer.Stmts[1].(*internal.BlockStmt)
	a := inner.Stmts[0].(*internal.ExprStmt).Expr.(*internal.VariableExpr)
	if a.Distance != 1 || a.Field {
		t.Errorf("a: want distance 1, got %d (field %t)", a.Distance, a.Field)
	}
	g := inner.Stmts[1].(*internal.ExprStmt).Expr.(*internal.VariableExpr)
	if g.Distance != internal.Unresolved {
		t.Errorf("g: want unresolved, got %d", g.Distance)
	}

	class := prog.Stmts[2].(*internal.ClassStmt)
	block := class.Methods[0].Body[0].(*internal.BlockStmt)
	f := block.Stmts[0].(*internal.ExprStmt).Expr.(*internal.VariableExpr)
	if f.Distance != 1 || !f.Field {
		t.Errorf("f: want field at distance 1, got %d (field %t)", f.Distance, f.Field)
	}
	p := block.Stmts[1].(*internal.ExprStmt).Expr.(*internal.VariableExpr)
	if p.Distance != 1 || p.Field {
		t.Errorf("p: want distance 1, got %d (field %t)", p.Distance, p.Field)
	}
	this := block.Stmts[2].(*internal.ExprStmt).Expr.(*internal.ThisExpr)
	if this.Distance != 2 {
		t.Errorf("this: want distance 2, got %d", this.Distance)
	}
}

// TestResolveOnce tests that resolving twice neither fails nor changes the
// annotations.
func TestResolveOnce(t *testing.T) {
	prog := mustParse(t, `{ var a; a; }`)
	if err := internal.Resolve(prog); err != nil {
		t.Fatal(err)
	}
	v := prog.Stmts[0].(*internal.BlockStmt).Stmts[1].(*internal.ExprStmt).Expr.(*internal.VariableExpr)
	d := v.Distance
	if err := internal.Resolve(prog); err != nil {
		t.Fatal(err)
	}
	if v.Distance != d {
		t.Errorf("distance changed from %d to %d", d, v.Distance)
	}
}
