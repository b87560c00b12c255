// Package testutils provides utilities for testing hslang code in Go.
package testutils

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/zephyrtronium/hslang"
)

// VM is an interpreter prepared for tests. Its standard output and test
// results are captured, and its global scope defines emit, a native function
// which records its argument and returns it.
type VM struct {
	*hslang.VM
	// Out holds everything printed.
	Out *bytes.Buffer
	// Collector holds recorded test results.
	Collector *hslang.MemoryCollector

	emitted []hslang.Value
}

// NewVM creates a test VM. Its module registry is a copy of the default
// registry with the fixture modules added, so tests may register further
// modules without affecting each other.
func NewVM() *VM {
	vm := &VM{
		VM:        hslang.NewVM(),
		Out:       new(bytes.Buffer),
		Collector: hslang.NewMemoryCollector(),
	}
	vm.Stdout = vm.Out
	vm.Results = vm.Collector
	vm.Modules = vm.Modules.Clone()
	vm.Modules.Register(Fixture("fixture", "double", "join"))
	vm.Modules.Register(Fixture("fixture2", "double"))
	vm.Globals.Define("emit", &hslang.NativeFunction{
		Module: "testutils",
		Name:   "emit",
		Arity:  1,
		Fn: func(_ *hslang.VM, args []hslang.Value) (interface{}, error) {
			vm.emitted = append(vm.emitted, args[0])
			return args[0], nil
		},
	})
	return vm
}

// Emitted returns the values passed to emit, in order.
func (vm *VM) Emitted() []hslang.Value {
	return vm.emitted
}

// Fixture returns a native module exporting some of the following functions:
//
//	double(x)    returns 2*x
//	join(...)    returns its arguments joined by spaces
//	fail()       returns an error
func Fixture(name string, fns ...string) hslang.NativeModule {
	m := &hslang.FuncModule{ModuleName: name}
	for _, fn := range fns {
		switch fn {
		case "double":
			m.Funcs = append(m.Funcs, hslang.NativeFunctionDescriptor{Name: fn, Arity: 1, Fn: double})
		case "join":
			m.Funcs = append(m.Funcs, hslang.NativeFunctionDescriptor{Name: fn, Arity: hslang.Variadic, Fn: join})
		case "fail":
			m.Funcs = append(m.Funcs, hslang.NativeFunctionDescriptor{Name: fn, Arity: 0, Fn: fail})
		default:
			panic("testutils: unknown fixture function " + fn)
		}
	}
	return m
}

// ErrFixture is the error returned by the fixture fail function.
var ErrFixture = errors.New("fixture failure")

func double(_ *hslang.VM, args []hslang.Value) (interface{}, error) {
	x, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("double: want number, got %s", hslang.TypeName(args[0]))
	}
	return 2 * x, nil
}

func join(_ *hslang.VM, args []hslang.Value) (interface{}, error) {
	var b bytes.Buffer
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(hslang.Stringify(arg))
	}
	return b.String(), nil
}

func fail(*hslang.VM, []hslang.Value) (interface{}, error) {
	return nil, ErrFixture
}

// A SourceTestCase is a test case containing hslang source code and a
// predicate to check the result.
type SourceTestCase struct {
	// Source is the hslang source code to execute.
	Source string
	// Pass is a predicate taking the test VM and the result of executing
	// Source. If Pass returns false, then the test fails.
	Pass func(vm *VM, result hslang.Value, err error) bool
}

// TestFunc returns a test function for the test case. Each test runs in a
// new VM.
func (c SourceTestCase) TestFunc(name string) func(*testing.T) {
	return func(t *testing.T) {
		vm := NewVM()
		r, err := vm.DoString(c.Source, name)
		if !c.Pass(vm, r, err) {
			if err != nil {
				t.Errorf("%q produced wrong result; an error occurred: %v", c.Source, err)
			} else {
				t.Errorf("%q produced wrong result; got %s (%T), emitted %v, printed %q", c.Source, hslang.Stringify(r), r, vm.Emitted(), vm.Out.String())
			}
		}
	}
}

// PassEqual returns a Pass function for a SourceTestCase that predicates on
// structural equality of the result. If an error occurred, then the predicate
// returns false.
func PassEqual(want hslang.Value) func(*VM, hslang.Value, error) bool {
	return func(_ *VM, result hslang.Value, err error) bool {
		if err != nil {
			return false
		}
		return hslang.Equal(want, result)
	}
}

// PassEmitted returns a Pass function for a SourceTestCase that predicates on
// the exact sequence of values passed to emit.
func PassEmitted(want ...hslang.Value) func(*VM, hslang.Value, error) bool {
	return func(vm *VM, _ hslang.Value, err error) bool {
		if err != nil {
			return false
		}
		got := vm.Emitted()
		if len(got) != len(want) {
			return false
		}
		for i := range want {
			if !hslang.Equal(want[i], got[i]) {
				return false
			}
		}
		return true
	}
}

// PassOutput returns a Pass function for a SourceTestCase that predicates on
// the exact printed output.
func PassOutput(want string) func(*VM, hslang.Value, error) bool {
	return func(vm *VM, _ hslang.Value, err error) bool {
		return err == nil && vm.Out.String() == want
	}
}

// PassResults returns a Pass function for a SourceTestCase that predicates on
// the exact sequence of recorded test results.
func PassResults(want ...hslang.Result) func(*VM, hslang.Value, error) bool {
	return func(vm *VM, _ hslang.Value, err error) bool {
		if err != nil {
			return false
		}
		got := vm.Collector.Results()
		if len(got) == 0 && len(want) == 0 {
			return true
		}
		return reflect.DeepEqual(got, want)
	}
}

// PassFailure returns a Pass function for a SourceTestCase that returns true
// iff execution failed with an error matching target according to errors.Is.
// If target is nil, any error passes.
func PassFailure(target error) func(*VM, hslang.Value, error) bool {
	return func(_ *VM, _ hslang.Value, err error) bool {
		if err == nil {
			return false
		}
		return target == nil || errors.Is(err, target)
	}
}

// PassKind returns a Pass function for a SourceTestCase that returns true iff
// execution failed with an Exception of the given kind wrapping target.
func PassKind(kind hslang.Kind, target error) func(*VM, hslang.Value, error) bool {
	return func(_ *VM, _ hslang.Value, err error) bool {
		var ex *hslang.Exception
		if !errors.As(err, &ex) {
			return false
		}
		return ex.Kind == kind && errors.Is(ex, target)
	}
}

// PassSuccess returns a Pass function for a SourceTestCase that returns true
// iff execution completed without error.
func PassSuccess() func(*VM, hslang.Value, error) bool {
	return func(_ *VM, _ hslang.Value, err error) bool {
		return err == nil
	}
}

// PassAll returns a Pass function for a SourceTestCase that returns true iff
// every given predicate does.
func PassAll(preds ...func(*VM, hslang.Value, error) bool) func(*VM, hslang.Value, error) bool {
	return func(vm *VM, result hslang.Value, err error) bool {
		for _, p := range preds {
			if !p(vm, result, err) {
				return false
			}
		}
		return true
	}
}
