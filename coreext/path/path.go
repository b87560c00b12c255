// Package path provides the path native module. Paths given to and returned
// by its functions use forward slashes regardless of the operating system.
package path

import (
	"path/filepath"
	"runtime"

	"github.com/zephyrtronium/hslang"
)

// Module is the path native module.
var Module = &hslang.FuncModule{
	ModuleName: "path",
	Funcs: []hslang.NativeFunctionDescriptor{
		{Name: "absolute", Arity: 1, Fn: absolute},
		{Name: "isPathAbsolute", Arity: 1, Fn: slashed(func(s string) interface{} { return filepath.IsAbs(s) })},
		{Name: "base", Arity: 1, Fn: slashed(func(s string) interface{} { return filepath.Base(s) })},
		{Name: "dir", Arity: 1, Fn: slashed(func(s string) interface{} { return filepath.ToSlash(filepath.Dir(s)) })},
		{Name: "ext", Arity: 1, Fn: slashed(func(s string) interface{} { return filepath.Ext(s) })},
		{Name: "clean", Arity: 1, Fn: slashed(func(s string) interface{} { return filepath.ToSlash(filepath.Clean(s)) })},
		{Name: "join", Arity: hslang.Variadic, Fn: join},
		{Name: "hasDriveLetters", Arity: 0, Fn: constant(runtime.GOOS == "windows")},
		{Name: "separator", Arity: 0, Fn: constant(string(filepath.Separator))},
		{Name: "listSeparator", Arity: 0, Fn: constant(string(filepath.ListSeparator))},
	},
}

func init() {
	hslang.Register(Module)
}

func constant(v interface{}) hslang.Fn {
	return func(*hslang.VM, []hslang.Value) (interface{}, error) {
		return v, nil
	}
}

// slashed creates a function of one path argument, converted to the
// operating system's separators before f sees it.
func slashed(f func(string) interface{}) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		s, err := hslang.StringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return f(filepath.FromSlash(s)), nil
	}
}

// absolute returns an absolute version of the argument path.
func absolute(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	s, err := hslang.StringArg(args, 0)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.FromSlash(s))
	if err != nil {
		return nil, err
	}
	return filepath.ToSlash(abs), nil
}

// join joins any number of path elements.
func join(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	elems := make([]string, len(args))
	for i := range args {
		s, err := hslang.StringArg(args, i)
		if err != nil {
			return nil, err
		}
		elems[i] = filepath.FromSlash(s)
	}
	return filepath.ToSlash(filepath.Join(elems...)), nil
}
