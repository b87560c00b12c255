package internal

import "github.com/zephyrtronium/hslang/internal/token"

// Function is a user-declared function, method, or constructor.
type Function struct {
	Decl *FunStmt
	// Closure is the scope the function was declared in. For bound methods,
	// it is the scope binding this.
	Closure *Scope
	// IsInitializer marks constructors, which always return this.
	IsInitializer bool
}

// Name returns the function's declared name.
func (f *Function) Name() string {
	return f.Decl.Name.Lexeme
}

// Arity returns the number of parameters the function declares.
func (f *Function) Arity() int {
	return len(f.Decl.Params)
}

// Bind creates a copy of the method with this bound to the given value.
func (f *Function) Bind(this Value) *Function {
	s := NewScope(f.Closure)
	s.Define("this", this)
	return &Function{Decl: f.Decl, Closure: s, IsInitializer: f.IsInitializer}
}

// callFunction executes a function's body with the given arguments. The
// return signal stops here, at the call boundary.
func (vm *VM) callFunction(f *Function, args []Value) (Value, Stop) {
	if vm.depth >= vm.maxDepth() {
		return Raise(RuntimeErr(f.Decl.Name, ErrCallDepth, "call depth exceeds %d in %s", vm.maxDepth(), f.Name()))
	}
	vm.depth++
	defer func() { vm.depth-- }()
	scope := NewScope(f.Closure)
	for i, p := range f.Decl.Params {
		scope.Define(p.Lexeme, args[i])
	}
	result, stop := vm.execBlock(f.Decl.Body, scope)
	switch stop {
	case NoStop:
		result = nil
	case ReturnStop: // do nothing
	case ExceptionStop:
		return result, stop
	case BreakStop, ContinueStop:
		return Raise(InternalErr(f.Decl.Name, ErrControlEscape, "%s escaped function %s", stop, f.Name()))
	default:
		panic(invalidStop(stop))
	}
	if f.IsInitializer {
		this, _ := f.Closure.Lookup("this")
		return this, NoStop
	}
	return result, NoStop
}

// instantiate creates an instance of a class. Fields are initialized from
// the root of the class chain down, then the nearest constructor runs.
func (vm *VM) instantiate(c *Class, args []Value, paren token.Token) (Value, Stop) {
	ctor := c.FindMethod(constructorName)
	if want := c.Arity(); len(args) != want {
		return Raise(RuntimeErr(paren, ErrArity, "%s constructor expects %d arguments, have %d", c.Name, want, len(args)))
	}
	inst := &Instance{Class: c, fields: make(map[string]Value)}
	for _, k := range c.chain() {
		for _, f := range k.fieldOrder {
			inst.fields[f.Name.Lexeme] = nil
			if f.Init == nil {
				continue
			}
			this := NewScope(k.Closure)
			this.Define("this", inst)
			v, stop := vm.eval(f.Init, NewScope(this))
			if stop != NoStop {
				return v, stop
			}
			inst.fields[f.Name.Lexeme] = v
		}
	}
	if ctor != nil {
		if r, stop := vm.callFunction(ctor.Bind(inst), args); stop != NoStop {
			return r, stop
		}
	}
	return inst, NoStop
}
