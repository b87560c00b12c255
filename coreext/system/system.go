// Package system provides the system native module, which describes the
// process and host the interpreter is running on.
package system

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/zephyrtronium/hslang"
)

// Module is the system native module.
var Module = &hslang.FuncModule{
	ModuleName: "system",
	Funcs: []hslang.NativeFunctionDescriptor{
		{Name: "platform", Arity: 0, Fn: constant(runtime.GOOS)},
		{Name: "platformVersion", Arity: 0, Fn: func(*hslang.VM, []hslang.Value) (interface{}, error) { return platformVersion(), nil }},
		{Name: "machine", Arity: 0, Fn: func(*hslang.VM, []hslang.Value) (interface{}, error) { return machine(), nil }},
		{Name: "pid", Arity: 0, Fn: func(*hslang.VM, []hslang.Value) (interface{}, error) { return pid(), nil }},
		{Name: "cpus", Arity: 0, Fn: func(*hslang.VM, []hslang.Value) (interface{}, error) { return runtime.NumCPU(), nil }},
		{Name: "activeCpus", Arity: 0, Fn: func(*hslang.VM, []hslang.Value) (interface{}, error) { return runtime.GOMAXPROCS(0), nil }},
		{Name: "version", Arity: 0, Fn: constant(hslang.Version)},
		{Name: "args", Arity: 0, Fn: args},
		{Name: "launchPath", Arity: 0, Fn: launchPath},
		{Name: "installPrefix", Arity: 0, Fn: installPrefix},
		{Name: "getEnv", Arity: 1, Fn: getEnv},
		{Name: "setEnv", Arity: 2, Fn: setEnv},
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

// args returns the process's command-line arguments, excluding the program
// name.
func args(vm *hslang.VM, _ []hslang.Value) (interface{}, error) {
	r := make([]hslang.Value, len(os.Args)-1)
	for i, v := range os.Args[1:] {
		r[i] = v
	}
	return r, nil
}

// launchPath returns the working directory, or null if it is unavailable.
func launchPath(vm *hslang.VM, _ []hslang.Value) (interface{}, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil
	}
	return wd, nil
}

// installPrefix returns the directory two above the executable. When the
// interpreter is launched via go run, this is nonsense.
func installPrefix(vm *hslang.VM, _ []hslang.Value) (interface{}, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", nil
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

// getEnv returns the value of an environment variable, or null if it is not
// set.
func getEnv(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	name, err := hslang.StringArg(args, 0)
	if err != nil {
		return nil, err
	}
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// setEnv sets an environment variable and returns its new value.
func setEnv(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	name, err := hslang.StringArg(args, 0)
	if err != nil {
		return nil, err
	}
	val, err := hslang.StringArg(args, 1)
	if err != nil {
		return nil, err
	}
	if err := os.Setenv(name, val); err != nil {
		return nil, err
	}
	return val, nil
}
