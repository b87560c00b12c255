package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sort"
	"sync"

	"github.com/zephyrtronium/hslang/internal/token"
)

// Fn is the signature of host functions callable from hslang. Arguments are
// hslang values; the result may be any Go value, which is converted with
// FromGo. A non-nil error raises a runtime error at the call site.
type Fn func(vm *VM, args []Value) (interface{}, error)

// Variadic is the arity of native functions accepting any number of
// arguments.
const Variadic = -1

// NativeFunctionDescriptor describes one function a native module exports.
type NativeFunctionDescriptor struct {
	Name string
	// Arity is the number of arguments the function requires, or Variadic.
	Arity int
	Fn    Fn
}

// NativeModule is a collection of host functions importable by name.
type NativeModule interface {
	// Name returns the name programs use to import the module.
	Name() string
	// SupportedFunctions returns the functions the module exports to the
	// import at tok.
	SupportedFunctions(tok token.Token) []NativeFunctionDescriptor
}

// NativeFunction is the bridge through which a program calls a host
// function.
type NativeFunction struct {
	Module string
	Name   string
	Arity  int
	Fn     Fn
}

func newNativeFunction(module string, d NativeFunctionDescriptor) *NativeFunction {
	return &NativeFunction{Module: module, Name: d.Name, Arity: d.Arity, Fn: d.Fn}
}

// FuncModule is a NativeModule exporting a fixed list of functions.
type FuncModule struct {
	ModuleName string
	Funcs      []NativeFunctionDescriptor
}

// Name returns the module name.
func (m *FuncModule) Name() string {
	return m.ModuleName
}

// SupportedFunctions returns a copy of the module's functions.
func (m *FuncModule) SupportedFunctions(tok token.Token) []NativeFunctionDescriptor {
	return append([]NativeFunctionDescriptor(nil), m.Funcs...)
}

// Registry maps module names to native modules. It is safe for concurrent
// use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]NativeModule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]NativeModule)}
}

// Register adds a module to the registry, replacing any module of the same
// name.
func (r *Registry) Register(m NativeModule) {
	r.mu.Lock()
	r.modules[m.Name()] = m
	r.mu.Unlock()
}

// Remove deletes a module from the registry.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	delete(r.modules, name)
	r.mu.Unlock()
}

// Lookup finds a module by name.
func (r *Registry) Lookup(name string) (NativeModule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Names returns the names of all registered modules in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := make([]string, 0, len(r.modules))
	for k := range r.modules {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

// Clone creates a new registry with the same modules.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := NewRegistry()
	for k, v := range r.modules {
		n.modules[k] = v
	}
	return n
}

// defaultRegistry holds modules registered by core extensions.
var defaultRegistry = NewRegistry()

// Register adds a module to the default registry. Core extensions call this
// from their init functions.
func Register(m NativeModule) {
	defaultRegistry.Register(m)
}

// DefaultRegistry returns the registry of modules added with Register.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// PluginSymbol is the name of the function a plugin module exports. Its type
// must be func() NativeModule.
const PluginSymbol = "HsModule"

// LoadPlugin opens a Go plugin and returns the module it provides.
func LoadPlugin(path string) (NativeModule, error) {
	plug, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open plugin %s: %w", path, err)
	}
	sym, err := plug.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("couldn't load module from %s: %w", path, err)
	}
	f, ok := sym.(func() NativeModule)
	if !ok {
		return nil, fmt.Errorf("%s in %s has type %T, not func() NativeModule", PluginSymbol, path, sym)
	}
	return f(), nil
}

// ScanPlugins loads every plugin module in a directory into r. Files without
// the .so extension are skipped. It returns the names of the modules loaded
// along with the joined errors of any .so files which failed to load.
func ScanPlugins(r *Registry, dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("couldn't scan for plugins: %w", err)
	}
	var names []string
	var errs []error
	for _, ent := range ents {
		if ent.IsDir() || filepath.Ext(ent.Name()) != ".so" {
			continue
		}
		m, err := LoadPlugin(filepath.Join(dir, ent.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.Register(m)
		names = append(names, m.Name())
	}
	return names, errors.Join(errs...)
}
