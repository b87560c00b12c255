package internal

import (
	"fmt"
	"math"
)

// Stop represents the reason for flow control.
type Stop int

// Control flow reasons.
const (
	// NoStop indicates normal execution.
	NoStop Stop = iota
	// ContinueStop should be interpreted by loops as a signal to proceed to
	// the loop's next step. It is an error inside a switch case.
	ContinueStop
	// BreakStop should be interpreted by loops and switches as a signal to
	// exit.
	BreakStop
	// ReturnStop should be interpreted by function calls and tests as a
	// signal to exit with the accompanying result.
	ReturnStop
	// ExceptionStop indicates that the accompanying result is an *Exception.
	// Everything propagates it.
	ExceptionStop
)

var stopNames = [...]string{"normal", "continue", "break", "return", "exception"}

// String returns a string representation of the Stop.
func (s Stop) String() string {
	if s < NoStop || s > ExceptionStop {
		return fmt.Sprintf("Stop(%d)", s)
	}
	return stopNames[s]
}

// Err returns nil if s is NoStop or an error value if s is ContinueStop,
// BreakStop, ReturnStop, or ExceptionStop. Panics otherwise.
func (s Stop) Err() error {
	switch s {
	case NoStop:
		return nil
	case ContinueStop, BreakStop, ReturnStop, ExceptionStop:
		return stopError(s)
	default:
		panic(invalidStop(s))
	}
}

type stopError Stop

func (err stopError) Error() string {
	return Stop(err).String()
}

func invalidStop(s Stop) string {
	return fmt.Sprintf("hslang: invalid Stop: %v", s)
}

// loopBody executes one iteration of a loop body and decides how the loop
// proceeds. If done is true, the loop ends with the returned result and stop.
func (vm *VM) loopBody(body Stmt, scope *Scope) (result Value, stop Stop, done bool) {
	result, stop = vm.exec(body, scope)
	switch stop {
	case NoStop, ContinueStop:
		return nil, NoStop, false
	case BreakStop:
		return nil, NoStop, true
	case ReturnStop, ExceptionStop:
		return result, stop, true
	default:
		panic(invalidStop(stop))
	}
}

// execWhile runs a while loop. Like every other loop, it gets one scope of
// its own for the whole loop.
func (vm *VM) execWhile(s *WhileStmt, env *Scope) (Value, Stop) {
	scope := NewScope(env)
	for {
		c, stop := vm.eval(s.Cond, scope)
		if stop != NoStop {
			return c, stop
		}
		if !Truthy(c) {
			return nil, NoStop
		}
		if r, stop, done := vm.loopBody(s.Body, scope); done {
			return r, stop
		}
	}
}

func (vm *VM) execDo(s *DoStmt, env *Scope) (Value, Stop) {
	scope := NewScope(env)
	for {
		if r, stop, done := vm.loopBody(s.Body, scope); done {
			return r, stop
		}
		c, stop := vm.eval(s.Cond, scope)
		if stop != NoStop {
			return c, stop
		}
		if !Truthy(c) {
			return nil, NoStop
		}
	}
}

// execFor runs a for loop. A continue in the body still runs the increment.
func (vm *VM) execFor(s *ForStmt, env *Scope) (Value, Stop) {
	scope := NewScope(env)
	if s.Init != nil {
		if r, stop := vm.exec(s.Init, scope); stop != NoStop {
			return r, stop
		}
	}
	for {
		if s.Cond != nil {
			c, stop := vm.eval(s.Cond, scope)
			if stop != NoStop {
				return c, stop
			}
			if !Truthy(c) {
				return nil, NoStop
			}
		}
		if r, stop, done := vm.loopBody(s.Body, scope); done {
			return r, stop
		}
		if s.Incr != nil {
			if r, stop := vm.eval(s.Incr, scope); stop != NoStop {
				return r, stop
			}
		}
	}
}

// execForeach runs a foreach loop. The loop variable is defined once and
// reassigned for each element, so closures capturing it all see one binding.
func (vm *VM) execForeach(s *ForeachStmt, env *Scope) (Value, Stop) {
	v, stop := vm.eval(s.Iterable, env)
	if stop != NoStop {
		return v, stop
	}
	v = Unwrap(v)
	next, ok := iterate(v)
	if !ok {
		return Raise(RuntimeErr(s.Keyword, ErrNotIterable, "cannot iterate over %s", TypeName(v)))
	}
	scope := NewScope(env)
	scope.Define(s.Name.Lexeme, nil)
	for x, ok := next(); ok; x, ok = next() {
		if err := scope.AssignAt(s.Name, 0, x); err != nil {
			return Raise(asException(s.Name, err))
		}
		if r, stop, done := vm.loopBody(s.Body, scope); done {
			return r, stop
		}
	}
	return nil, NoStop
}

// execRepeat runs a loop body a fixed number of times. The count is
// evaluated once and truncated toward negative infinity.
func (vm *VM) execRepeat(s *RepeatStmt, env *Scope) (Value, Stop) {
	v, stop := vm.eval(s.Count, env)
	if stop != NoStop {
		return v, stop
	}
	n, ok := Unwrap(v).(float64)
	if !ok {
		return Raise(RuntimeErr(s.Keyword, ErrType, "repeat count must be a number, not %s", TypeName(Unwrap(v))))
	}
	n = math.Floor(n)
	scope := NewScope(env)
	for i := 0.0; i < n; i++ {
		if r, stop, done := vm.loopBody(s.Body, scope); done {
			return r, stop
		}
	}
	return nil, NoStop
}

// execSwitch runs the first case whose value equals the subject, or the
// default case if none does. Cases don't fall through.
func (vm *VM) execSwitch(s *SwitchStmt, env *Scope) (Value, Stop) {
	subj, stop := vm.eval(s.Subject, env)
	if stop != NoStop {
		return subj, stop
	}
	subj = Unwrap(subj)
	arm := s.Default
	for _, c := range s.Cases {
		v, stop := vm.eval(c.Value, env)
		if stop != NoStop {
			return v, stop
		}
		if Equal(subj, v) {
			arm = c
			break
		}
	}
	if arm == nil {
		return nil, NoStop
	}
	r, stop := vm.execBlock(arm.Body, NewScope(env))
	switch stop {
	case NoStop, BreakStop:
		return nil, NoStop
	case ContinueStop:
		return Raise(RuntimeErr(arm.Keyword, ErrInvalidMove, "continue inside switch case"))
	case ReturnStop, ExceptionStop:
		return r, stop
	default:
		panic(invalidStop(stop))
	}
}
