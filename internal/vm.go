package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zephyrtronium/hslang/internal/token"
)

// Version is the interpreter version.
const Version = "0.1.0"

// DefaultMaxCallDepth is the call depth limit used when ExecutionOptions
// does not set one.
const DefaultMaxCallDepth = 10000

// ExecutionOptions controls how programs execute.
type ExecutionOptions struct {
	// PermitAmbiguousExternalFunctions allows module imports to replace
	// existing global bindings instead of failing.
	PermitAmbiguousExternalFunctions bool
	// MaxSteps limits the number of statements one Interpret call may
	// execute. Zero means no limit.
	MaxSteps uint64
	// MaxCallDepth limits the depth of nested function calls. Zero means
	// DefaultMaxCallDepth.
	MaxCallDepth int
}

// VM is an interpreter for hslang programs. A VM is not safe for concurrent
// use; hosts running programs in parallel should create one VM for each.
type VM struct {
	Options ExecutionOptions
	// Modules is the registry module statements and native declarations
	// consult.
	Modules *Registry
	// Results receives the outcomes of test statements.
	Results ResultCollector
	// Globals is the global scope used by DoString and DoReader.
	Globals *Scope
	// Stdout is the destination of print statements.
	Stdout io.Writer
	// Log receives debug events about imports, declarations, and tests.
	Log zerolog.Logger
	// StartTime is the time at which the VM was created.
	StartTime time.Time

	// ctx is the context of the current Interpret call.
	ctx context.Context
	// global is the global scope of the current Interpret call.
	global *Scope
	// steps counts statements executed in the current Interpret call.
	steps uint64
	// depth is the current function call depth.
	depth int
}

// NewVM creates a VM using the default module registry, an in-memory result
// collector, and standard output.
func NewVM() *VM {
	return &VM{
		Modules: DefaultRegistry(),
		Results: NewMemoryCollector(),
		Globals: NewScope(nil),
		Stdout:  os.Stdout,
		Log:     zerolog.Nop(),

		StartTime: time.Now(),
	}
}

func (vm *VM) maxDepth() int {
	if vm.Options.MaxCallDepth > 0 {
		return vm.Options.MaxCallDepth
	}
	return DefaultMaxCallDepth
}

// Parse parses and resolves a program.
func (vm *VM) Parse(src io.Reader, label string) (*Program, error) {
	prog, err := Parse(src, label)
	if err != nil {
		return nil, err
	}
	if err := Resolve(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// Interpret executes a program with global as its global scope. The program
// is resolved first if it has not been already. The result is the value of
// the last expression statement executed at the top level. Any failure is
// returned as an error, which is always an *Exception or a join of them.
func (vm *VM) Interpret(ctx context.Context, prog *Program, global *Scope) (Value, error) {
	if err := Resolve(prog); err != nil {
		return nil, err
	}
	if global == nil {
		global = vm.Globals
	}
	octx, oglobal, osteps := vm.ctx, vm.global, vm.steps
	vm.ctx, vm.global, vm.steps = ctx, global, 0
	defer func() { vm.ctx, vm.global, vm.steps = octx, oglobal, osteps }()

	var result Value
	for _, s := range prog.Stmts {
		r, stop := vm.exec(s, global)
		switch stop {
		case NoStop:
			if _, ok := s.(*ExprStmt); ok {
				result = r
			}
		case ExceptionStop:
			return nil, r.(*Exception)
		case ContinueStop, BreakStop, ReturnStop:
			return nil, InternalErr(stmtToken(s), ErrControlEscape, "%s escaped to top level", stop)
		default:
			panic(invalidStop(stop))
		}
	}
	return result, nil
}

// DoString parses and executes source code in the VM's global scope.
func (vm *VM) DoString(src, label string) (Value, error) {
	return vm.DoReader(strings.NewReader(src), label)
}

// DoReader parses and executes source code in the VM's global scope.
func (vm *VM) DoReader(src io.Reader, label string) (Value, error) {
	prog, err := vm.Parse(src, label)
	if err != nil {
		return nil, err
	}
	return vm.Interpret(context.Background(), prog, vm.Globals)
}

// Call calls a function, class, or native function value from the host. It
// may be used by native functions to call back into the program.
func (vm *VM) Call(callee Value, args ...Value) (Value, error) {
	tok := token.SyntheticToken(token.LeftParen)
	if vm.global == nil {
		vm.global = vm.Globals
		defer func() { vm.global = nil }()
	}
	r, stop := vm.call(callee, args, tok)
	switch stop {
	case NoStop:
		return r, nil
	case ExceptionStop:
		return nil, r.(*Exception)
	default:
		return nil, InternalErr(tok, ErrControlEscape, "%s escaped host call", stop)
	}
}

// step accounts for the execution of one statement, enforcing cancellation
// and the step limit.
func (vm *VM) step(s Stmt) (Value, Stop) {
	vm.steps++
	if max := vm.Options.MaxSteps; max > 0 && vm.steps > max {
		return Raise(RuntimeErr(stmtToken(s), ErrStepLimit, "executed more than %d statements", max))
	}
	if vm.ctx != nil {
		if err := vm.ctx.Err(); err != nil {
			return Raise(RuntimeErr(stmtToken(s), fmt.Errorf("%w: %w", ErrCancelled, err), ""))
		}
	}
	return nil, NoStop
}

// stmtToken returns a token representative of a statement's position.
func stmtToken(s Stmt) token.Token {
	switch s := s.(type) {
	case *ExprStmt:
		return exprToken(s.Expr)
	case *PrintStmt:
		return s.Keyword
	case *VarStmt:
		return s.Name
	case *BlockStmt:
		if len(s.Stmts) > 0 {
			return stmtToken(s.Stmts[0])
		}
	case *IfStmt:
		return s.Keyword
	case *WhileStmt:
		return s.Keyword
	case *DoStmt:
		return s.Keyword
	case *ForStmt:
		return s.Keyword
	case *ForeachStmt:
		return s.Keyword
	case *RepeatStmt:
		return s.Keyword
	case *SwitchStmt:
		return s.Keyword
	case *ReturnStmt:
		return s.Keyword
	case *BreakStmt:
		return s.Keyword
	case *ContinueStmt:
		return s.Keyword
	case *TestStmt:
		return s.Keyword
	case *ModuleStmt:
		return s.Keyword
	case *NativeStmt:
		return s.Keyword
	case *FunStmt:
		return s.Name
	case *ClassStmt:
		return s.Name
	}
	return token.Token{}
}
