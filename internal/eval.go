package internal

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/zephyrtronium/hslang/internal/token"
)

// eval evaluates an expression in a scope. The only stop an expression can
// produce is ExceptionStop.
func (vm *VM) eval(e Expr, env *Scope) (Value, Stop) {
	switch e := e.(type) {
	case *LiteralExpr:
		return e.Value, NoStop
	case *VariableExpr:
		v, err := vm.lookup(e.Name, e.Distance, e.Field, env)
		if err != nil {
			return Raise(asException(e.Name, err))
		}
		return v, NoStop
	case *AssignExpr:
		v, stop := vm.eval(e.Value, env)
		if stop != NoStop {
			return v, stop
		}
		if e.Op != nil {
			old, err := vm.lookup(e.Name, e.Distance, e.Field, env)
			if err != nil {
				return Raise(asException(e.Name, err))
			}
			if v, stop = vm.binary(e.Op, e.Name, old, v); stop != NoStop {
				return v, stop
			}
		}
		if err := vm.assign(e.Name, e.Distance, e.Field, env, v); err != nil {
			return Raise(asException(e.Name, err))
		}
		return v, NoStop
	case *ThisExpr:
		v, err := env.GetAt(e.Keyword, e.Distance)
		if err != nil {
			return Raise(asException(e.Keyword, err))
		}
		return v, NoStop
	case *SuperExpr:
		return vm.evalSuper(e, env)
	case *UnaryExpr:
		return vm.evalUnary(e, env)
	case *PostfixExpr:
		old, stop := vm.eval(e.Target, env)
		if stop != NoStop {
			return old, stop
		}
		if r, stop := vm.step1(e.Op, e.Target, old, env); stop != NoStop {
			return r, stop
		}
		return old, NoStop
	case *BinaryExpr:
		l, stop := vm.eval(e.Left, env)
		if stop != NoStop {
			return l, stop
		}
		r, stop := vm.eval(e.Right, env)
		if stop != NoStop {
			return r, stop
		}
		return vm.binary(e.Op.Type, e.Op, l, r)
	case *LogicalExpr:
		l, stop := vm.eval(e.Left, env)
		if stop != NoStop {
			return l, stop
		}
		if (e.Op.Type == token.Or) == Truthy(l) {
			return l, NoStop
		}
		return vm.eval(e.Right, env)
	case *TernaryExpr:
		c, stop := vm.eval(e.Cond, env)
		if stop != NoStop {
			return c, stop
		}
		if Truthy(c) {
			return vm.eval(e.Then, env)
		}
		return vm.eval(e.Else, env)
	case *CallExpr:
		callee, stop := vm.eval(e.Callee, env)
		if stop != NoStop {
			return callee, stop
		}
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			if args[i], stop = vm.eval(a, env); stop != NoStop {
				return args[i], stop
			}
		}
		return vm.call(callee, args, e.Paren)
	case *GetExpr:
		obj, stop := vm.eval(e.Object, env)
		if stop != NoStop {
			return obj, stop
		}
		return vm.property(obj, e.Name)
	case *SetExpr:
		obj, stop := vm.eval(e.Object, env)
		if stop != NoStop {
			return obj, stop
		}
		v, stop := vm.eval(e.Value, env)
		if stop != NoStop {
			return v, stop
		}
		return vm.setProperty(obj, e.Name, e.Op, v)
	case *IndexExpr:
		obj, stop := vm.eval(e.Object, env)
		if stop != NoStop {
			return obj, stop
		}
		idx, stop := vm.eval(e.Index, env)
		if stop != NoStop {
			return idx, stop
		}
		return vm.index(obj, idx, e.Bracket)
	case *SetIndexExpr:
		obj, stop := vm.eval(e.Object, env)
		if stop != NoStop {
			return obj, stop
		}
		idx, stop := vm.eval(e.Index, env)
		if stop != NoStop {
			return idx, stop
		}
		v, stop := vm.eval(e.Value, env)
		if stop != NoStop {
			return v, stop
		}
		return vm.setIndex(obj, idx, e.Bracket, e.Op, v)
	case *ArrayExpr:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			var stop Stop
			if elems[i], stop = vm.eval(el, env); stop != NoStop {
				return elems[i], stop
			}
		}
		return NewArray(elems...), NoStop
	case *GroupingExpr:
		return vm.eval(e.Inner, env)
	}
	panic(fmt.Sprintf("hslang: unknown expression %T", e))
}

// lookup reads a variable according to its resolution.
func (vm *VM) lookup(name token.Token, distance int, field bool, env *Scope) (Value, error) {
	switch {
	case field:
		c, err := env.ContainerAt(name, distance, "this")
		if err != nil {
			return nil, err
		}
		return c.Get(name)
	case distance == Unresolved:
		return vm.global.Get(name)
	default:
		return env.GetAt(name, distance)
	}
}

// assign writes a variable according to its resolution.
func (vm *VM) assign(name token.Token, distance int, field bool, env *Scope, v Value) error {
	switch {
	case field:
		c, err := env.ContainerAt(name, distance, "this")
		if err != nil {
			return err
		}
		return c.Set(name, v)
	case distance == Unresolved:
		return vm.global.Assign(name, v)
	default:
		return env.AssignAt(name, distance, v)
	}
}

func (vm *VM) evalSuper(e *SuperExpr, env *Scope) (Value, Stop) {
	sv, err := env.GetAt(e.Keyword, e.Distance)
	if err != nil {
		return Raise(asException(e.Keyword, err))
	}
	super, ok := sv.(*Class)
	if !ok {
		return Raise(InternalErr(e.Keyword, ErrNotClass, "super is a %s", TypeName(sv)))
	}
	thisTok := token.SyntheticToken(token.This)
	thisTok.Label, thisTok.Line, thisTok.Col = e.Keyword.Label, e.Keyword.Line, e.Keyword.Col
	this, err := env.GetAt(thisTok, e.Distance-1)
	if err != nil {
		return Raise(asException(e.Keyword, err))
	}
	m := super.FindMethod(e.Method.Lexeme)
	if m == nil {
		return Raise(RuntimeErr(e.Method, ErrUndefinedProperty, "superclass %s has no method %s", super.Name, e.Method.Lexeme))
	}
	return m.Bind(this), NoStop
}

func (vm *VM) evalUnary(e *UnaryExpr, env *Scope) (Value, Stop) {
	v, stop := vm.eval(e.Right, env)
	if stop != NoStop {
		return v, stop
	}
	switch e.Op.Type {
	case token.Bang:
		return !Truthy(v), NoStop
	case token.Minus:
		n, ok := Unwrap(v).(float64)
		if !ok {
			return Raise(RuntimeErr(e.Op, ErrType, "operand of - must be a number, not %s", TypeName(v)))
		}
		return -n, NoStop
	case token.Complement:
		n, ok := Unwrap(v).(float64)
		if !ok {
			return Raise(RuntimeErr(e.Op, ErrType, "operand of ~ must be a number, not %s", TypeName(v)))
		}
		return float64(^int64(n)), NoStop
	case token.Increment, token.Decrement:
		return vm.step1(e.Op, e.Right, v, env)
	}
	panic(fmt.Sprintf("hslang: unknown unary operator %s", e.Op.Type))
}

// step1 adds or subtracts one from the current value old of target and stores
// the result back into target, returning the new value.
func (vm *VM) step1(op token.Token, target Expr, old Value, env *Scope) (Value, Stop) {
	n, ok := Unwrap(old).(float64)
	if !ok {
		return Raise(RuntimeErr(op, ErrType, "operand of %s must be a number, not %s", op.Lexeme, TypeName(old)))
	}
	if op.Type == token.Increment {
		n++
	} else {
		n--
	}
	switch t := target.(type) {
	case *VariableExpr:
		if err := vm.assign(t.Name, t.Distance, t.Field, env, n); err != nil {
			return Raise(asException(t.Name, err))
		}
	case *GetExpr:
		obj, stop := vm.eval(t.Object, env)
		if stop != NoStop {
			return obj, stop
		}
		if r, stop := vm.setProperty(obj, t.Name, nil, n); stop != NoStop {
			return r, stop
		}
	case *IndexExpr:
		obj, stop := vm.eval(t.Object, env)
		if stop != NoStop {
			return obj, stop
		}
		idx, stop := vm.eval(t.Index, env)
		if stop != NoStop {
			return idx, stop
		}
		if r, stop := vm.setIndex(obj, idx, t.Bracket, nil, n); stop != NoStop {
			return r, stop
		}
	default:
		return Raise(InternalErr(op, ErrType, "invalid %s operand", op.Lexeme))
	}
	return n, NoStop
}

// binary applies a binary operator. tok is the position for errors.
func (vm *VM) binary(op *token.Type, tok token.Token, l, r Value) (Value, Stop) {
	l, r = Unwrap(l), Unwrap(r)
	switch op {
	case token.EqualEqual:
		return Equal(l, r), NoStop
	case token.BangEqual:
		return !Equal(l, r), NoStop
	case token.Plus:
		switch a := l.(type) {
		case float64:
			if b, ok := r.(float64); ok {
				return a + b, NoStop
			}
		case *Array:
			if b, ok := r.(*Array); ok {
				elems := make([]Value, 0, len(a.Elems)+len(b.Elems))
				return NewArray(append(append(elems, a.Elems...), b.Elems...)...), NoStop
			}
		}
		_, ls := l.(string)
		_, rs := r.(string)
		if ls || rs {
			return Stringify(l) + Stringify(r), NoStop
		}
		return Raise(RuntimeErr(tok, ErrType, "cannot add %s and %s", TypeName(l), TypeName(r)))
	case token.InstanceOf:
		c, ok := r.(*Class)
		if !ok {
			return Raise(RuntimeErr(tok, ErrNotClass, "right operand of instanceof must be a class, not %s", TypeName(r)))
		}
		inst, ok := l.(*Instance)
		return ok && inst.Class.IsSubclassOf(c), NoStop
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		if a, ok := l.(string); ok {
			if b, ok := r.(string); ok {
				return compare(op, cmpStrings(a, b)), NoStop
			}
		}
	}
	a, aok := l.(float64)
	b, bok := r.(float64)
	if !aok || !bok {
		return Raise(RuntimeErr(tok, ErrType, "operands of %s must be numbers, not %s and %s", tok.Lexeme, TypeName(l), TypeName(r)))
	}
	switch op {
	case token.Minus:
		return a - b, NoStop
	case token.Star:
		return a * b, NoStop
	case token.Slash:
		return a / b, NoStop
	case token.Modulo:
		return math.Mod(a, b), NoStop
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		switch {
		case a < b:
			return compare(op, -1), NoStop
		case a > b:
			return compare(op, 1), NoStop
		case a == b:
			return compare(op, 0), NoStop
		}
		return false, NoStop
	case token.Ampersand:
		return float64(int64(a) & int64(b)), NoStop
	case token.Pipe:
		return float64(int64(a) | int64(b)), NoStop
	case token.Caret:
		return float64(int64(a) ^ int64(b)), NoStop
	case token.ShiftLeft:
		if b < 0 {
			break
		}
		return float64(int64(a) << uint64(b)), NoStop
	case token.ShiftRight:
		if b < 0 {
			break
		}
		return float64(int64(a) >> uint64(b)), NoStop
	case token.Range:
		r, err := NewRange(a, b)
		if err != nil {
			return Raise(asException(tok, err))
		}
		return r, NoStop
	default:
		panic(fmt.Sprintf("hslang: unknown binary operator %s", op))
	}
	return Raise(RuntimeErr(tok, ErrType, "negative shift count %s", FormatNumber(b)))
}

func cmpStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compare converts a three-way comparison to the result of a comparison
// operator.
func compare(op *token.Type, c int) bool {
	switch op {
	case token.Less:
		return c < 0
	case token.LessEqual:
		return c <= 0
	case token.Greater:
		return c > 0
	default:
		return c >= 0
	}
}

// call calls a callable value.
func (vm *VM) call(callee Value, args []Value, paren token.Token) (Value, Stop) {
	switch f := callee.(type) {
	case *Function:
		if len(args) != f.Arity() {
			return Raise(RuntimeErr(paren, ErrArity, "%s expects %d arguments, have %d", f.Name(), f.Arity(), len(args)))
		}
		return vm.callFunction(f, args)
	case *Class:
		return vm.instantiate(f, args, paren)
	case *NativeFunction:
		if f.Arity != Variadic && len(args) != f.Arity {
			return Raise(RuntimeErr(paren, ErrArity, "%s.%s expects %d arguments, have %d", f.Module, f.Name, f.Arity, len(args)))
		}
		r, err := f.Fn(vm, args)
		if err != nil {
			if ex, ok := err.(*Exception); ok {
				return Raise(ex)
			}
			return Raise(RuntimeErr(paren, err, "%s.%s: %v", f.Module, f.Name, err))
		}
		return FromGo(r), NoStop
	}
	return Raise(RuntimeErr(paren, ErrNotCallable, "cannot call %s", TypeName(callee)))
}

// property reads a named property of a value.
func (vm *VM) property(obj Value, name token.Token) (Value, Stop) {
	switch o := obj.(type) {
	case PropertyContainer:
		v, err := o.Get(name)
		if err != nil {
			return Raise(asException(name, err))
		}
		return v, NoStop
	case *Array:
		if name.Lexeme == "length" {
			return float64(len(o.Elems)), NoStop
		}
	case string:
		if name.Lexeme == "length" {
			return float64(utf8.RuneCountInString(o)), NoStop
		}
	case *Range:
		switch name.Lexeme {
		case "start":
			return o.Start, NoStop
		case "end":
			return o.End, NoStop
		case "length":
			return float64(o.Len()), NoStop
		}
	case *Class:
		if name.Lexeme == "name" {
			return o.Name, NoStop
		}
	}
	return Raise(RuntimeErr(name, ErrUndefinedProperty, "%s has no property %s", TypeName(obj), name.Lexeme))
}

// setProperty writes a named property of a value. If op is not nil, the
// property is updated with that operator.
func (vm *VM) setProperty(obj Value, name token.Token, op *token.Type, v Value) (Value, Stop) {
	c, ok := obj.(PropertyContainer)
	if !ok {
		return Raise(RuntimeErr(name, ErrType, "cannot set property %s of %s", name.Lexeme, TypeName(obj)))
	}
	if op != nil {
		old, err := c.Get(name)
		if err != nil {
			return Raise(asException(name, err))
		}
		var stop Stop
		if v, stop = vm.binary(op, name, old, v); stop != NoStop {
			return v, stop
		}
	}
	if err := c.Set(name, v); err != nil {
		return Raise(asException(name, err))
	}
	return v, NoStop
}

// intIndex converts an index value to an int in [0, n).
func intIndex(idx Value, n int, tok token.Token) (int, *Exception) {
	f, ok := Unwrap(idx).(float64)
	if !ok {
		return 0, RuntimeErr(tok, ErrType, "index must be a number, not %s", TypeName(idx))
	}
	if f != math.Trunc(f) || f < 0 || f >= float64(n) {
		return 0, RuntimeErr(tok, ErrType, "index %s out of range [0, %d)", FormatNumber(f), n)
	}
	return int(f), nil
}

func (vm *VM) index(obj, idx Value, tok token.Token) (Value, Stop) {
	switch o := Unwrap(obj).(type) {
	case *Array:
		i, ex := intIndex(idx, len(o.Elems), tok)
		if ex != nil {
			return Raise(ex)
		}
		return o.Elems[i], NoStop
	case string:
		rs := []rune(o)
		i, ex := intIndex(idx, len(rs), tok)
		if ex != nil {
			return Raise(ex)
		}
		return string(rs[i]), NoStop
	case *Range:
		i, ex := intIndex(idx, o.Len(), tok)
		if ex != nil {
			return Raise(ex)
		}
		return o.At(i), NoStop
	case *External:
		if next, ok := iterate(o); ok {
			var elems []Value
			for v, ok := next(); ok; v, ok = next() {
				elems = append(elems, v)
			}
			return vm.index(NewArray(elems...), idx, tok)
		}
	}
	return Raise(RuntimeErr(tok, ErrType, "cannot index %s", TypeName(obj)))
}

func (vm *VM) setIndex(obj, idx Value, tok token.Token, op *token.Type, v Value) (Value, Stop) {
	a, ok := obj.(*Array)
	if !ok {
		return Raise(RuntimeErr(tok, ErrType, "cannot assign to index of %s", TypeName(obj)))
	}
	i, ex := intIndex(idx, len(a.Elems), tok)
	if ex != nil {
		return Raise(ex)
	}
	if op != nil {
		var stop Stop
		if v, stop = vm.binary(op, tok, a.Elems[i], v); stop != NoStop {
			return v, stop
		}
	}
	a.Elems[i] = v
	return v, NoStop
}
