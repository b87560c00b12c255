package internal

import (
	"fmt"

	"github.com/zephyrtronium/hslang/internal/token"
)

// exec executes a statement in a scope.
func (vm *VM) exec(s Stmt, env *Scope) (Value, Stop) {
	if r, stop := vm.step(s); stop != NoStop {
		return r, stop
	}
	switch s := s.(type) {
	case *ExprStmt:
		return vm.eval(s.Expr, env)
	case *PrintStmt:
		v, stop := vm.eval(s.Expr, env)
		if stop != NoStop {
			return v, stop
		}
		if _, err := fmt.Fprintln(vm.Stdout, Stringify(v)); err != nil {
			return Raise(RuntimeErr(s.Keyword, err, ""))
		}
		return nil, NoStop
	case *VarStmt:
		var v Value
		if s.Init != nil {
			var stop Stop
			if v, stop = vm.eval(s.Init, env); stop != NoStop {
				return v, stop
			}
		}
		env.Define(s.Name.Lexeme, v)
		return nil, NoStop
	case *BlockStmt:
		return vm.execBlock(s.Stmts, NewScope(env))
	case *IfStmt:
		c, stop := vm.eval(s.Cond, env)
		if stop != NoStop {
			return c, stop
		}
		if Truthy(c) {
			return vm.exec(s.Then, env)
		}
		if s.Else != nil {
			return vm.exec(s.Else, env)
		}
		return nil, NoStop
	case *WhileStmt:
		return vm.execWhile(s, env)
	case *DoStmt:
		return vm.execDo(s, env)
	case *ForStmt:
		return vm.execFor(s, env)
	case *ForeachStmt:
		return vm.execForeach(s, env)
	case *RepeatStmt:
		return vm.execRepeat(s, env)
	case *SwitchStmt:
		return vm.execSwitch(s, env)
	case *ReturnStmt:
		if s.Value == nil {
			return nil, ReturnStop
		}
		v, stop := vm.eval(s.Value, env)
		if stop != NoStop {
			return v, stop
		}
		return v, ReturnStop
	case *BreakStmt:
		return nil, BreakStop
	case *ContinueStmt:
		return nil, ContinueStop
	case *TestStmt:
		return vm.execTest(s)
	case *ModuleStmt:
		return vm.importModule(s)
	case *NativeStmt:
		return vm.declareNative(s, env)
	case *FunStmt:
		env.Define(s.Name.Lexeme, &Function{Decl: s, Closure: env})
		return nil, NoStop
	case *ClassStmt:
		return vm.declareClass(s, env)
	}
	panic(fmt.Sprintf("hslang: unknown statement %T", s))
}

// execBlock executes statements in the given scope, which the caller
// creates. The result is that of the last statement.
func (vm *VM) execBlock(stmts []Stmt, scope *Scope) (Value, Stop) {
	var result Value
	for _, s := range stmts {
		r, stop := vm.exec(s, scope)
		if stop != NoStop {
			return r, stop
		}
		result = r
	}
	return result, NoStop
}

// execTest runs a test body in a fresh scope enclosing the global scope,
// isolated from any local scope around the statement. A returned value is
// recorded as the test's result according to its truthiness.
func (vm *VM) execTest(s *TestStmt) (Value, Stop) {
	name, _ := s.Name.Literal.(string)
	r, stop := vm.execBlock(s.Body, NewScope(vm.global))
	switch stop {
	case NoStop:
		vm.Log.Debug().Str("test", name).Str("pos", s.Keyword.Pos()).Msg("test returned no result")
		return nil, NoStop
	case ReturnStop:
		passed := Truthy(r)
		vm.Log.Debug().Str("test", name).Bool("passed", passed).Msg("test result")
		if vm.Results != nil {
			vm.Results.AddResult(name, passed)
		}
		return nil, NoStop
	case ExceptionStop:
		return r, stop
	case BreakStop, ContinueStop:
		return Raise(InternalErr(s.Keyword, ErrControlEscape, "%s escaped test %q", stop, name))
	default:
		panic(invalidStop(stop))
	}
}

// moduleName returns the name an import token refers to.
func moduleName(tok token.Token) string {
	if s, ok := tok.Literal.(string); ok && tok.Type == token.String {
		return s
	}
	return tok.Lexeme
}

// importModule binds every function a native module supports into the
// global scope. Names already bound globally are an error unless ambiguous
// imports are permitted, in which case the import replaces them.
func (vm *VM) importModule(s *ModuleStmt) (Value, Stop) {
	name := moduleName(s.Name)
	mod, ok := vm.Modules.Lookup(name)
	if !ok {
		return Raise(EvalError(s.Name, ErrUnknownModule, "unknown module %q", name))
	}
	fns := mod.SupportedFunctions(s.Name)
	if !vm.Options.PermitAmbiguousExternalFunctions {
		for _, d := range fns {
			if _, ok := vm.global.Lookup(d.Name); ok {
				return Raise(EvalError(s.Name, ErrAmbiguousImport, "%s.%s is already defined globally", name, d.Name))
			}
		}
	}
	for _, d := range fns {
		vm.global.Define(d.Name, newNativeFunction(mod.Name(), d))
	}
	vm.Log.Debug().Str("module", name).Int("functions", len(fns)).Msg("imported module")
	return nil, NoStop
}

// declareNative binds a single native function into the current scope.
func (vm *VM) declareNative(s *NativeStmt, env *Scope) (Value, Stop) {
	mod, ok := vm.Modules.Lookup(s.Module.Lexeme)
	if !ok {
		return Raise(EvalError(s.Module, ErrUnknownModule, "unknown module %q", s.Module.Lexeme))
	}
	for _, d := range mod.SupportedFunctions(s.Keyword) {
		if d.Name != s.Name.Lexeme {
			continue
		}
		if d.Arity != Variadic && d.Arity != len(s.Params) {
			return Raise(EvalError(s.Name, ErrArity, "%s.%s takes %d arguments, declared with %d", s.Module.Lexeme, d.Name, d.Arity, len(s.Params)))
		}
		env.Define(s.Name.Lexeme, newNativeFunction(mod.Name(), d))
		vm.Log.Debug().Str("module", s.Module.Lexeme).Str("function", d.Name).Msg("declared native function")
		return nil, NoStop
	}
	return Raise(EvalError(s.Name, ErrUnknownFunction, "module %s has no function %s", s.Module.Lexeme, s.Name.Lexeme))
}

// declareClass creates a class. The class name is bound to a placeholder
// before the class is built so that methods can refer to it, then assigned
// once the class is complete.
func (vm *VM) declareClass(s *ClassStmt, env *Scope) (Value, Stop) {
	var super *Class
	if s.Superclass != nil {
		v, stop := vm.eval(s.Superclass, env)
		if stop != NoStop {
			return v, stop
		}
		c, ok := Unwrap(v).(*Class)
		if !ok {
			return Raise(RuntimeErr(exprToken(s.Superclass), ErrNotClass, "superclass of %s must be a class, not %s", s.Name.Lexeme, TypeName(v)))
		}
		if c.Final {
			return Raise(EvalError(exprToken(s.Superclass), ErrFinalSuperclass, "%s cannot extend final class %s", s.Name.Lexeme, c.Name))
		}
		super = c
	}
	env.Define(s.Name.Lexeme, nil)

	scope := env
	if super != nil {
		scope = NewScope(env)
		scope.Define("super", super)
	}
	class := NewClass(s.Name.Lexeme, super)
	class.fieldOrder = s.Fields
	class.Final, class.Dynamic = s.Final, s.Dynamic
	class.Closure = scope
	for _, m := range s.Methods {
		class.Methods[m.Name.Lexeme] = &Function{Decl: m, Closure: scope}
	}
	if s.Constructor != nil {
		class.Constructor = &Function{Decl: s.Constructor, Closure: scope, IsInitializer: true}
		class.Methods[constructorName] = class.Constructor
	}
	for _, f := range s.Fields {
		class.Fields[f.Name.Lexeme] = f
	}
	// The super scope is only reachable through the class's closure now, so
	// the placeholder's scope is env again.
	if err := env.AssignAt(s.Name, 0, class); err != nil {
		return Raise(asException(s.Name, err))
	}
	ev := vm.Log.Debug().Str("class", class.Name)
	if super != nil {
		ev = ev.Str("extends", super.Name)
	}
	ev.Msg("declared class")
	return nil, NoStop
}
