// Package math provides the math native module.
package math

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/zephyrtronium/hslang"
)

// Module is the math native module.
var Module = &hslang.FuncModule{
	ModuleName: "math",
	Funcs: []hslang.NativeFunctionDescriptor{
		{Name: "pi", Arity: 0, Fn: constant(math.Pi)},
		{Name: "e", Arity: 0, Fn: constant(math.E)},
		{Name: "inf", Arity: 0, Fn: constant(math.Inf(1))},
		{Name: "nan", Arity: 0, Fn: constant(math.NaN())},
		{Name: "abs", Arity: 1, Fn: unary(math.Abs)},
		{Name: "ceil", Arity: 1, Fn: unary(math.Ceil)},
		{Name: "floor", Arity: 1, Fn: unary(math.Floor)},
		{Name: "round", Arity: 1, Fn: unary(math.Round)},
		{Name: "trunc", Arity: 1, Fn: unary(math.Trunc)},
		{Name: "sqrt", Arity: 1, Fn: unary(math.Sqrt)},
		{Name: "cbrt", Arity: 1, Fn: unary(math.Cbrt)},
		{Name: "exp", Arity: 1, Fn: unary(math.Exp)},
		{Name: "sin", Arity: 1, Fn: unary(math.Sin)},
		{Name: "cos", Arity: 1, Fn: unary(math.Cos)},
		{Name: "tan", Arity: 1, Fn: unary(math.Tan)},
		{Name: "asin", Arity: 1, Fn: unary(math.Asin)},
		{Name: "acos", Arity: 1, Fn: unary(math.Acos)},
		{Name: "atan", Arity: 1, Fn: unary(math.Atan)},
		{Name: "atan2", Arity: 2, Fn: binary(math.Atan2)},
		{Name: "pow", Arity: 2, Fn: binary(math.Pow)},
		{Name: "hypot", Arity: 2, Fn: binary(math.Hypot)},
		{Name: "mod", Arity: 2, Fn: binary(math.Mod)},
		{Name: "log", Arity: hslang.Variadic, Fn: log},
		{Name: "min", Arity: hslang.Variadic, Fn: fold(math.Min)},
		{Name: "max", Arity: hslang.Variadic, Fn: fold(math.Max)},
		{Name: "isNaN", Arity: 1, Fn: isNaN},
		{Name: "random", Arity: 0, Fn: random},
	},
}

func init() {
	hslang.Register(Module)
}

func constant(x float64) hslang.Fn {
	return func(*hslang.VM, []hslang.Value) (interface{}, error) {
		return x, nil
	}
}

func unary(f func(float64) float64) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		x, err := hslang.NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

func binary(f func(float64, float64) float64) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		x, err := hslang.NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		y, err := hslang.NumberArg(args, 1)
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	}
}

// fold creates a variadic function reducing its arguments with f. The
// arguments may also be given as a single array.
func fold(f func(float64, float64) float64) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		if len(args) == 1 {
			if a, ok := args[0].(*hslang.Array); ok {
				args = a.Elems
			}
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: need at least one number", hslang.ErrArity)
		}
		r, err := hslang.NumberArg(args, 0)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i++ {
			x, err := hslang.NumberArg(args, i)
			if err != nil {
				return nil, err
			}
			r = f(r, x)
		}
		return r, nil
	}
}

// log(x, base) computes a logarithm. The base defaults to e.
func log(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	x, err := hslang.NumberArg(args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return math.Log(x), nil
	}
	b, err := hslang.NumberArg(args, 1)
	if err != nil {
		return nil, err
	}
	switch b {
	case 2:
		return math.Log2(x), nil
	case 10:
		return math.Log10(x), nil
	}
	return math.Log(x) / math.Log(b), nil
}

func isNaN(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	x, err := hslang.NumberArg(args, 0)
	if err != nil {
		return nil, err
	}
	return math.IsNaN(x), nil
}

// random returns a pseudo-random number in [0, 1).
func random(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	return rand.Float64(), nil
}
