package internal

import (
	"errors"
	"fmt"

	"github.com/zephyrtronium/hslang/internal/token"
)

// Kind is the category of an Exception.
type Kind int

// Exception kinds.
const (
	// EvaluationError is a failure of the program's structure at the point of
	// evaluation, e.g. extending a final class or importing an unknown
	// module.
	EvaluationError Kind = iota
	// RuntimeError is a failure caused by the values a program computes, e.g.
	// a repeat count that is not a number.
	RuntimeError
	// InternalError indicates a defect in the interpreter, such as a control
	// signal escaping the construct that should have caught it.
	InternalError
)

var kindNames = [...]string{"evaluation error", "runtime error", "internal error"}

// String returns a string representation of the Kind.
func (k Kind) String() string {
	if k < EvaluationError || k > InternalError {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Phase is the stage of the pipeline in which an Exception occurred.
type Phase int

// Pipeline phases.
const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseResolve
	PhaseInterpret
)

var phaseNames = [...]string{"lex", "parse", "resolve", "interpret"}

// String returns a string representation of the Phase.
func (p Phase) String() string {
	if p < PhaseLex || p > PhaseInterpret {
		return fmt.Sprintf("Phase(%d)", p)
	}
	return phaseNames[p]
}

// Sentinel errors wrapped by Exceptions. Use errors.Is to test for them.
var (
	ErrUnresolved        = errors.New("unresolved reference")
	ErrNotClass          = errors.New("superclass must be a class")
	ErrFinalSuperclass   = errors.New("cannot extend a final class")
	ErrUnknownModule     = errors.New("unknown module")
	ErrUnknownFunction   = errors.New("unknown native function")
	ErrAmbiguousImport   = errors.New("ambiguous import")
	ErrType              = errors.New("type error")
	ErrNotIterable       = errors.New("value is not iterable")
	ErrInvalidMove       = errors.New("invalid move")
	ErrNotCallable       = errors.New("value is not callable")
	ErrArity             = errors.New("wrong number of arguments")
	ErrUndefinedProperty = errors.New("undefined property")
	ErrControlEscape     = errors.New("control signal escaped")
	ErrStepLimit         = errors.New("step limit exceeded")
	ErrCallDepth         = errors.New("call depth exceeded")
	ErrCancelled         = errors.New("execution cancelled")
	ErrSyntax            = errors.New("syntax error")
)

// Exception is an error raised while processing a program. It carries the
// token at which the error occurred and the phase that produced it.
type Exception struct {
	Kind  Kind
	Phase Phase
	Token token.Token
	Msg   string
	Err   error
}

// Error returns the error message, prefixed with the source position.
func (e *Exception) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Token.Type == nil {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Token.Pos(), e.Kind, msg)
}

// Unwrap returns the error underlying the exception.
func (e *Exception) Unwrap() error {
	return e.Err
}

// newException creates an interpretation-phase exception. If format is
// empty, the message is that of err.
func newException(kind Kind, tok token.Token, err error, format string, args ...interface{}) *Exception {
	ex := &Exception{Kind: kind, Phase: PhaseInterpret, Token: tok, Err: err}
	if format != "" {
		ex.Msg = fmt.Sprintf(format, args...)
	}
	return ex
}

// EvalError creates an evaluation error at tok wrapping err.
func EvalError(tok token.Token, err error, format string, args ...interface{}) *Exception {
	return newException(EvaluationError, tok, err, format, args...)
}

// RuntimeErr creates a runtime error at tok wrapping err.
func RuntimeErr(tok token.Token, err error, format string, args ...interface{}) *Exception {
	return newException(RuntimeError, tok, err, format, args...)
}

// InternalErr creates an internal error at tok wrapping err.
func InternalErr(tok token.Token, err error, format string, args ...interface{}) *Exception {
	return newException(InternalError, tok, err, format, args...)
}

// Raise returns ex as an exceptional result.
func Raise(ex *Exception) (Value, Stop) {
	return ex, ExceptionStop
}

// asException converts an error from a lower layer into an exception at tok.
// Errors which are already exceptions are returned unchanged.
func asException(tok token.Token, err error) *Exception {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex
	}
	return RuntimeErr(tok, err, "")
}

// lexErrors converts the joined errors of the lexer into exceptions.
func lexErrors(err error) error {
	var errs []error
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	} else {
		errs = []error{err}
	}
	r := make([]error, 0, len(errs))
	for _, e := range errs {
		ex := &Exception{Kind: EvaluationError, Phase: PhaseLex, Msg: e.Error(), Err: ErrSyntax}
		var le *token.Error
		if errors.As(e, &le) {
			ex.Token, ex.Msg = le.Tok, le.Msg
		}
		r = append(r, ex)
	}
	return errors.Join(r...)
}
