package hslang

import (
	"context"
	"io"

	"github.com/zephyrtronium/hslang/internal"
)

// A VM interprets hslang programs.
type VM = internal.VM

// ExecutionOptions controls how programs execute.
type ExecutionOptions = internal.ExecutionOptions

// A Program is a parsed source unit.
type Program = internal.Program

// A Scope is a lexical scope. Hosts create the global scope of a run with
// NewScope(nil).
type Scope = internal.Scope

// Value is any hslang value.
type Value = internal.Value

// A Stop represents a reason for flow control.
type Stop = internal.Stop

// An Exception is an error raised while processing a program.
type Exception = internal.Exception

// Kind is the category of an Exception.
type Kind = internal.Kind

// Phase is the stage of the pipeline in which an Exception occurred.
type Phase = internal.Phase

// Array is a mutable sequence of values.
type Array = internal.Array

// Range is an inclusive sequence of numbers.
type Range = internal.Range

// MaxRangeLength is the largest number of values a range may hold.
const MaxRangeLength = internal.MaxRangeLength

// NewRange creates a range from start to end, both rounded down. It returns
// an error wrapping ErrType if the bounds are not finite or the range is
// longer than MaxRangeLength.
func NewRange(start, end float64) (*Range, error) {
	return internal.NewRange(start, end)
}

// External is a boxed host value.
type External = internal.External

// Iterable is implemented by host values which can be the subject of a
// foreach loop.
type Iterable = internal.Iterable

// PropertyContainer is a value with named properties.
type PropertyContainer = internal.PropertyContainer

// Class is a user-declared class.
type Class = internal.Class

// Instance is an object created by calling a class.
type Instance = internal.Instance

// Function is a user-declared function, method, or constructor.
type Function = internal.Function

// NativeFunction is the bridge through which a program calls a host
// function.
type NativeFunction = internal.NativeFunction

// Fn is the signature of host functions callable from hslang.
type Fn = internal.Fn

// NativeModule is a collection of host functions importable by name.
type NativeModule = internal.NativeModule

// NativeFunctionDescriptor describes one function a native module exports.
type NativeFunctionDescriptor = internal.NativeFunctionDescriptor

// FuncModule is a NativeModule exporting a fixed list of functions.
type FuncModule = internal.FuncModule

// Registry maps module names to native modules.
type Registry = internal.Registry

// ResultCollector receives the outcomes of test statements.
type ResultCollector = internal.ResultCollector

// CollectorFunc adapts a function to a ResultCollector.
type CollectorFunc = internal.CollectorFunc

// MemoryCollector records test results in memory.
type MemoryCollector = internal.MemoryCollector

// MultiCollector delivers each result to every collector in order.
type MultiCollector = internal.MultiCollector

// Result is a single recorded test outcome.
type Result = internal.Result

// Control flow reasons.
const (
	NoStop        = internal.NoStop
	ContinueStop  = internal.ContinueStop
	BreakStop     = internal.BreakStop
	ReturnStop    = internal.ReturnStop
	ExceptionStop = internal.ExceptionStop
)

// Exception kinds.
const (
	EvaluationError = internal.EvaluationError
	RuntimeError    = internal.RuntimeError
	InternalError   = internal.InternalError
)

// Pipeline phases.
const (
	PhaseLex       = internal.PhaseLex
	PhaseParse     = internal.PhaseParse
	PhaseResolve   = internal.PhaseResolve
	PhaseInterpret = internal.PhaseInterpret
)

// Version is the interpreter version.
const Version = internal.Version

// Variadic is the arity of native functions accepting any number of
// arguments.
const Variadic = internal.Variadic

// Sentinel errors wrapped by Exceptions.
var (
	ErrUnresolved        = internal.ErrUnresolved
	ErrNotClass          = internal.ErrNotClass
	ErrFinalSuperclass   = internal.ErrFinalSuperclass
	ErrUnknownModule     = internal.ErrUnknownModule
	ErrUnknownFunction   = internal.ErrUnknownFunction
	ErrAmbiguousImport   = internal.ErrAmbiguousImport
	ErrType              = internal.ErrType
	ErrNotIterable       = internal.ErrNotIterable
	ErrInvalidMove       = internal.ErrInvalidMove
	ErrNotCallable       = internal.ErrNotCallable
	ErrArity             = internal.ErrArity
	ErrUndefinedProperty = internal.ErrUndefinedProperty
	ErrControlEscape     = internal.ErrControlEscape
	ErrStepLimit         = internal.ErrStepLimit
	ErrCallDepth         = internal.ErrCallDepth
	ErrCancelled         = internal.ErrCancelled
	ErrSyntax            = internal.ErrSyntax
)

// NewVM creates a VM using the default module registry, an in-memory result
// collector, and standard output.
func NewVM() *VM {
	return internal.NewVM()
}

// NewScope creates an empty scope inside enclosing, which may be nil.
func NewScope(enclosing *Scope) *Scope {
	return internal.NewScope(enclosing)
}

// Parse parses and resolves a program.
func Parse(src io.Reader, label string) (*Program, error) {
	prog, err := internal.Parse(src, label)
	if err != nil {
		return nil, err
	}
	if err := internal.Resolve(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// Interpret executes a program against a global scope using a new VM with
// the given options. Test results are discarded; hosts that need them should
// use a VM directly.
func Interpret(ctx context.Context, prog *Program, global *Scope, opts ExecutionOptions) (Value, error) {
	vm := NewVM()
	vm.Options = opts
	return vm.Interpret(ctx, prog, global)
}

// Register adds a native module to the default registry. Core extensions
// call this from their init functions.
func Register(m NativeModule) {
	internal.Register(m)
}

// DefaultRegistry returns the registry of modules added with Register.
func DefaultRegistry() *Registry {
	return internal.DefaultRegistry()
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return internal.NewRegistry()
}

// NewMemoryCollector creates an empty in-memory result collector.
func NewMemoryCollector() *MemoryCollector {
	return internal.NewMemoryCollector()
}

// NewArray creates an array holding elems.
func NewArray(elems ...Value) *Array {
	return internal.NewArray(elems...)
}

// NewExternal boxes a host value.
func NewExternal(v interface{}) *External {
	return internal.NewExternal(v)
}

// FromGo converts a host value to an hslang value.
func FromGo(x interface{}) Value {
	return internal.FromGo(x)
}

// Truthy reports whether a value counts as true in a condition.
func Truthy(v Value) bool {
	return internal.Truthy(v)
}

// Equal reports whether two values are structurally equal.
func Equal(a, b Value) bool {
	return internal.Equal(a, b)
}

// Stringify formats a value the way print shows it.
func Stringify(v Value) string {
	return internal.Stringify(v)
}

// TypeName returns the name of a value's type as shown in error messages.
func TypeName(v Value) string {
	return internal.TypeName(v)
}

// LoadPlugin opens a Go plugin and returns the native module it provides
// through its HsModule function.
func LoadPlugin(path string) (NativeModule, error) {
	return internal.LoadPlugin(path)
}

// ScanPlugins loads every plugin module in a directory into r. It returns
// the names of the loaded modules and the joined errors of those that failed.
func ScanPlugins(r *Registry, dir string) ([]string, error) {
	return internal.ScanPlugins(r, dir)
}

// NumberArg returns the nth argument to a native function as a number.
func NumberArg(args []Value, n int) (float64, error) {
	return internal.NumberArg(args, n)
}

// StringArg returns the nth argument to a native function as a string.
func StringArg(args []Value, n int) (string, error) {
	return internal.StringArg(args, n)
}

// OptionalStringArg is like StringArg, but returns def if the nth argument
// is absent or null.
func OptionalStringArg(args []Value, n int, def string) (string, error) {
	return internal.OptionalStringArg(args, n, def)
}
