package internal_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zephyrtronium/hslang"
	"github.com/zephyrtronium/hslang/internal"
	"github.com/zephyrtronium/hslang/internal/token"
	"github.com/zephyrtronium/hslang/testutils"
)

func TestModules(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"Import": {
			Source: `module fixture; double(21);`,
			Pass:   testutils.PassEqual(42.0),
		},
		"ImportString": {
			Source: `module "fixture"; join(1, "a", true);`,
			Pass:   testutils.PassEqual("1 a true"),
		},
		"ImportGlobal": {
			Source: `{ module fixture; } double(1);`,
			Pass:   testutils.PassEqual(2.0),
		},
		"UnknownModule": {
			Source: `module nowhere;`,
			Pass:   testutils.PassKind(hslang.EvaluationError, hslang.ErrUnknownModule),
		},
		"Ambiguous": {
			Source: `var double = 1; module fixture;`,
			Pass:   testutils.PassKind(hslang.EvaluationError, hslang.ErrAmbiguousImport),
		},
		"AmbiguousReimport": {
			Source: `module fixture; module fixture2;`,
			Pass:   testutils.PassKind(hslang.EvaluationError, hslang.ErrAmbiguousImport),
		},
		"AmbiguousBindsNothing": {
			Source: `var join = 1; module fixture;`,
			Pass: func(vm *testutils.VM, _ hslang.Value, err error) bool {
				_, ok := vm.Globals.Lookup("double")
				return err != nil && !ok
			},
		},
		"LocalNotAmbiguous": {
			Source: `{ var double = 1; module fixture; } double(2);`,
			Pass:   testutils.PassEqual(4.0),
		},
		"Native": {
			Source: `native fun fixture.double(x); double(4);`,
			Pass:   testutils.PassEqual(8.0),
		},
		"NativeLocal": {
			Source: `{ native fun fixture.double(x); emit(double(1)); } double;`,
			Pass:   testutils.PassKind(hslang.EvaluationError, hslang.ErrUnresolved),
		},
		"NativeShadows": {
			Source: `var double = 1; { native fun fixture.double(x); emit(double(1)); } double;`,
			Pass:   testutils.PassAll(testutils.PassEmitted(2.0), testutils.PassEqual(1.0)),
		},
		"NativeVariadic": {
			Source: `native fun fixture.join(a, b, c); join("x", "y");`,
			Pass:   testutils.PassEqual("x y"),
		},
		"NativeArity": {
			Source: `native fun fixture.double(x, y);`,
			Pass:   testutils.PassKind(hslang.EvaluationError, hslang.ErrArity),
		},
		"NativeUnknownFunction": {
			Source: `native fun fixture.triple(x);`,
			Pass:   testutils.PassKind(hslang.EvaluationError, hslang.ErrUnknownFunction),
		},
		"NativeUnknownModule": {
			Source: `native fun nowhere.f();`,
			Pass:   testutils.PassKind(hslang.EvaluationError, hslang.ErrUnknownModule),
		},
		"CallArity": {
			Source: `module fixture; double(1, 2);`,
			Pass:   testutils.PassKind(hslang.RuntimeError, hslang.ErrArity),
		},
		"HostError": {
			Source: `module fixture; double("x");`,
			Pass:   testutils.PassFailure(nil),
		},
		"Print": {
			Source: `module fixture; print double;`,
			Pass:   testutils.PassOutput("<native fun fixture.double>\n"),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc("TestModules/"+name))
	}
}

// TestAmbiguousPermitted tests that permitting ambiguous imports lets the
// import replace existing global bindings.
func TestAmbiguousPermitted(t *testing.T) {
	vm := testutils.NewVM()
	vm.Options.PermitAmbiguousExternalFunctions = true
	r, err := vm.DoString(`var double = 1; module fixture; double(5);`, "TestAmbiguousPermitted")
	if err != nil {
		t.Fatal(err)
	}
	if r != 10.0 {
		t.Errorf("want 10, got %v", r)
	}
	r, err = vm.DoString(`module fixture2; double;`, "TestAmbiguousPermitted")
	if err != nil {
		t.Fatal(err)
	}
	nf, ok := r.(*internal.NativeFunction)
	if !ok || nf.Module != "fixture2" {
		t.Errorf("want fixture2.double, got %v", r)
	}
}

// TestHostErrorWrapped tests that errors returned by native functions become
// runtime errors wrapping the original error.
func TestHostErrorWrapped(t *testing.T) {
	vm := testutils.NewVM()
	vm.Modules.Register(testutils.Fixture("failing", "fail"))
	_, err := vm.DoString(`module failing; fail();`, "TestHostErrorWrapped")
	if !errors.Is(err, testutils.ErrFixture) {
		t.Fatalf("error doesn't wrap the host error: %v", err)
	}
	var ex *internal.Exception
	if !errors.As(err, &ex) || ex.Kind != internal.RuntimeError {
		t.Errorf("host error isn't a runtime error: %#v", err)
	}
}

// recordingModule records the import tokens it's given.
type recordingModule struct {
	toks []token.Token
}

func (m *recordingModule) Name() string { return "rec" }

func (m *recordingModule) SupportedFunctions(tok token.Token) []internal.NativeFunctionDescriptor {
	m.toks = append(m.toks, tok)
	return []internal.NativeFunctionDescriptor{{
		Name:  "where",
		Arity: 0,
		Fn: func(vm *internal.VM, args []internal.Value) (interface{}, error) {
			return tok.Line, nil
		},
	}}
}

// TestImportToken tests that modules receive the token of the import which
// requests their functions.
func TestImportToken(t *testing.T) {
	vm := testutils.NewVM()
	m := &recordingModule{}
	vm.Modules.Register(m)
	r, err := vm.DoString("\n\nmodule rec;\nwhere();", "TestImportToken")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.toks) != 1 {
		t.Fatalf("want 1 import, got %d", len(m.toks))
	}
	if m.toks[0].Line != 3 || m.toks[0].Lexeme != "rec" {
		t.Errorf("wrong import token %v at line %d", m.toks[0], m.toks[0].Line)
	}
	if r != 3.0 {
		t.Errorf("native function result not converted: got %v (%T)", r, r)
	}
}

func TestRegistry(t *testing.T) {
	r := internal.NewRegistry()
	r.Register(testutils.Fixture("b", "double"))
	r.Register(testutils.Fixture("a", "join"))
	if got := r.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("wrong names: %v", got)
	}
	c := r.Clone()
	c.Remove("a")
	if _, ok := c.Lookup("a"); ok {
		t.Error("removed module still present")
	}
	if _, ok := r.Lookup("a"); !ok {
		t.Error("removing from a clone changed the original")
	}
	r.Register(testutils.Fixture("b", "join"))
	m, _ := r.Lookup("b")
	if fns := m.SupportedFunctions(token.Token{}); len(fns) != 1 || fns[0].Name != "join" {
		t.Errorf("registering again didn't replace the module: %v", fns)
	}
}

type point struct {
	X, Y float64
	Tags map[string]string
}

func (p *point) Sum() float64 { return p.X + p.Y }

// TestExternal tests property access and iteration over boxed host values.
func TestExternal(t *testing.T) {
	vm := testutils.NewVM()
	p := &point{X: 1, Y: 2, Tags: map[string]string{"b": "2", "a": "1"}}
	vm.Globals.Define("p", internal.NewExternal(p))
	vm.Globals.Define("xs", internal.NewExternal([]int{3, 4}))
	vm.Globals.Define("m", internal.NewExternal(map[string]int{"z": 1, "y": 2}))

	r, err := vm.DoString(`p.X = 5; p.X + p.Y;`, "TestExternal")
	if err != nil {
		t.Fatal(err)
	}
	if r != 7.0 || p.X != 5 {
		t.Errorf("wrong struct access: got %v, X=%v", r, p.X)
	}
	if _, err := vm.DoString(`foreach (x in xs) emit(x); foreach (k in m) emit(k); emit(xs[1]);`, "TestExternal"); err != nil {
		t.Fatal(err)
	}
	want := []internal.Value{3.0, 4.0, "y", "z", 4.0}
	got := vm.Emitted()
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if !internal.Equal(want[i], got[i]) {
			t.Errorf("element %d: want %v, got %v", i, want[i], got[i])
		}
	}
	if _, err := vm.DoString(`p.X = "x";`, "TestExternal"); !errors.Is(err, internal.ErrType) {
		t.Errorf("want ErrType setting a number field to a string, got %v", err)
	}
	if _, err := vm.DoString(`p.Nope;`, "TestExternal"); !errors.Is(err, internal.ErrUndefinedProperty) {
		t.Errorf("want ErrUndefinedProperty, got %v", err)
	}
}

// TestScanPlugins tests that plugins which fail to load are reported while
// other files are skipped.
func TestScanPlugins(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"broken.so": "not a plugin",
		"notes.txt": "not a plugin either",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.so"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := internal.NewRegistry()
	names, err := internal.ScanPlugins(r, dir)
	if err == nil {
		t.Fatal("broken plugin wasn't reported")
	}
	if !strings.Contains(err.Error(), "broken.so") {
		t.Errorf("error doesn't name the broken plugin: %v", err)
	}
	if strings.Contains(err.Error(), "notes.txt") || strings.Contains(err.Error(), "sub.so") {
		t.Errorf("error names a skipped file: %v", err)
	}
	if len(names) != 0 || len(r.Names()) != 0 {
		t.Errorf("modules loaded from garbage: %v %v", names, r.Names())
	}

	names, err = internal.ScanPlugins(r, t.TempDir())
	if err != nil || len(names) != 0 {
		t.Errorf("empty directory: got %v, %v", names, err)
	}
}
