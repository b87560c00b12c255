package internal

import (
	"errors"
	"fmt"

	"github.com/zephyrtronium/hslang/internal/token"
)

// funcKind is the kind of function body being resolved.
type funcKind int

const (
	noFunc funcKind = iota
	plainFunc
	methodFunc
	initFunc
	testBody
)

// classInfo is the resolver's knowledge of the class being declared.
type classInfo struct {
	enclosing *classInfo
	hasSuper  bool
	fields    map[string]bool
	// fieldScope is the index in the scope stack of the current method's
	// parameter scope, or -1 outside methods.
	fieldScope int
}

// resolver annotates a program with scope distances and reports static
// errors in the use of names and control flow.
type resolver struct {
	// scopes maps names in each lexical scope to whether their declarations
	// have finished. The global scope is not tracked.
	scopes []map[string]bool
	fn     funcKind
	class  *classInfo
	// loops and switches count the enclosing loops and switches within the
	// current function.
	loops    int
	switches int
	errs     []error
}

// Resolve annotates prog in place. It is safe to call more than once; only
// the first call does any work. If the program misuses names or control
// flow, the error is the join of one *Exception for each problem.
func Resolve(prog *Program) error {
	if prog.resolved {
		return nil
	}
	r := resolver{}
	r.stmts(prog.Stmts)
	if len(r.errs) > 0 {
		return errors.Join(r.errs...)
	}
	prog.resolved = true
	return nil
}

func (r *resolver) fail(tok token.Token, format string, args ...interface{}) {
	r.errs = append(r.errs, &Exception{
		Kind:  EvaluationError,
		Phase: PhaseResolve,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
		Err:   ErrSyntax,
	})
}

func (r *resolver) begin() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *resolver) end() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.scopes[len(r.scopes)-1]
	if _, ok := s[name.Lexeme]; ok {
		r.fail(name, "%s is already declared in this scope", name.Lexeme)
	}
	s[name.Lexeme] = false
}

func (r *resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// local finds the distance to the scope declaring name, or Unresolved.
func (r *resolver) local(name string) int {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			return len(r.scopes) - 1 - i
		}
	}
	return Unresolved
}

// reference resolves a bare name, which may be an implicit field of this.
func (r *resolver) reference(name string) (distance int, field bool) {
	d := r.local(name)
	c := r.class
	if c == nil || c.fieldScope < 0 || !c.fields[name] {
		return d, false
	}
	top := len(r.scopes) - 1
	if d != Unresolved && top-d >= c.fieldScope {
		// A local of the method shadows the field.
		return d, false
	}
	return top - c.fieldScope, true
}

func (r *resolver) stmts(stmts []Stmt) {
	for _, s := range stmts {
		r.stmt(s)
	}
}

func (r *resolver) stmt(s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		r.expr(s.Expr)
	case *PrintStmt:
		r.expr(s.Expr)
	case *VarStmt:
		r.declare(s.Name)
		if s.Init != nil {
			r.expr(s.Init)
		}
		r.define(s.Name.Lexeme)
	case *BlockStmt:
		r.begin()
		r.stmts(s.Stmts)
		r.end()
	case *IfStmt:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *WhileStmt:
		r.begin()
		r.expr(s.Cond)
		r.loop(s.Body)
		r.end()
	case *DoStmt:
		r.begin()
		r.loop(s.Body)
		r.expr(s.Cond)
		r.end()
	case *ForStmt:
		r.begin()
		if s.Init != nil {
			r.stmt(s.Init)
		}
		if s.Cond != nil {
			r.expr(s.Cond)
		}
		if s.Incr != nil {
			r.expr(s.Incr)
		}
		r.loop(s.Body)
		r.end()
	case *ForeachStmt:
		r.expr(s.Iterable)
		r.begin()
		r.declare(s.Name)
		r.define(s.Name.Lexeme)
		r.loop(s.Body)
		r.end()
	case *RepeatStmt:
		r.expr(s.Count)
		r.begin()
		r.loop(s.Body)
		r.end()
	case *SwitchStmt:
		r.expr(s.Subject)
		r.switches++
		for _, c := range s.Cases {
			r.expr(c.Value)
			r.begin()
			r.stmts(c.Body)
			r.end()
		}
		if s.Default != nil {
			r.begin()
			r.stmts(s.Default.Body)
			r.end()
		}
		r.switches--
	case *ReturnStmt:
		switch r.fn {
		case noFunc:
			r.fail(s.Keyword, "return outside function")
		case initFunc:
			if s.Value != nil {
				r.fail(s.Keyword, "cannot return a value from a constructor")
			}
		}
		if s.Value != nil {
			r.expr(s.Value)
		}
	case *BreakStmt:
		if r.loops == 0 && r.switches == 0 {
			r.fail(s.Keyword, "break outside loop or switch")
		}
	case *ContinueStmt:
		if r.loops == 0 {
			r.fail(s.Keyword, "continue outside loop")
		}
	case *TestStmt:
		r.test(s)
	case *ModuleStmt:
		// Imports bind into the global scope, which isn't tracked.
	case *NativeStmt:
		r.declare(s.Name)
		r.define(s.Name.Lexeme)
	case *FunStmt:
		r.declare(s.Name)
		r.define(s.Name.Lexeme)
		r.function(s, plainFunc)
	case *ClassStmt:
		r.classDecl(s)
	default:
		panic(fmt.Sprintf("hslang: unknown statement %T", s))
	}
}

// loop resolves a loop body.
func (r *resolver) loop(body Stmt) {
	r.loops++
	r.stmt(body)
	r.loops--
}

// test resolves a test body against a fresh scope stack, since tests run
// rooted at the global scope.
func (r *resolver) test(s *TestStmt) {
	saved := *r
	r.scopes = nil
	r.fn = testBody
	r.class = nil
	r.loops, r.switches = 0, 0
	r.begin()
	r.stmts(s.Body)
	r.end()
	saved.errs = r.errs
	*r = saved
}

func (r *resolver) function(f *FunStmt, kind funcKind) {
	fn, loops, sw := r.fn, r.loops, r.switches
	r.fn, r.loops, r.switches = kind, 0, 0
	fs := -1
	if r.class != nil {
		fs = r.class.fieldScope
	}
	r.begin()
	if kind == methodFunc || kind == initFunc {
		r.class.fieldScope = len(r.scopes) - 1
	}
	for _, p := range f.Params {
		r.declare(p)
		r.define(p.Lexeme)
	}
	r.stmts(f.Body)
	r.end()
	if r.class != nil {
		r.class.fieldScope = fs
	}
	r.fn, r.loops, r.switches = fn, loops, sw
}

func (r *resolver) classDecl(c *ClassStmt) {
	if c.Superclass != nil {
		if v, ok := c.Superclass.(*VariableExpr); ok && v.Name.Lexeme == c.Name.Lexeme {
			r.fail(v.Name, "class %s cannot extend itself", c.Name.Lexeme)
		}
		r.expr(c.Superclass)
	}
	r.declare(c.Name)
	r.define(c.Name.Lexeme)

	info := &classInfo{
		enclosing:  r.class,
		hasSuper:   c.Superclass != nil,
		fields:     make(map[string]bool, len(c.Fields)),
		fieldScope: -1,
	}
	for _, f := range c.Fields {
		if info.fields[f.Name.Lexeme] {
			r.fail(f.Name, "duplicate field %s in class %s", f.Name.Lexeme, c.Name.Lexeme)
		}
		info.fields[f.Name.Lexeme] = true
	}
	r.class = info
	if info.hasSuper {
		r.begin()
		r.define("super")
	}
	// Field initializers run with this bound, inside an empty frame that
	// stands in for a method's parameter scope.
	r.begin()
	r.define("this")
	r.begin()
	info.fieldScope = len(r.scopes) - 1
	fn := r.fn
	r.fn = methodFunc
	for _, f := range c.Fields {
		if f.Init != nil {
			r.expr(f.Init)
		}
	}
	r.fn = fn
	info.fieldScope = -1
	r.end()
	r.end()

	methods := make(map[string]bool, len(c.Methods))
	for _, m := range c.Methods {
		if methods[m.Name.Lexeme] {
			r.fail(m.Name, "duplicate method %s in class %s", m.Name.Lexeme, c.Name.Lexeme)
		}
		methods[m.Name.Lexeme] = true
		r.method(m, methodFunc)
	}
	if c.Constructor != nil {
		r.method(c.Constructor, initFunc)
	}
	if info.hasSuper {
		r.end()
	}
	r.class = info.enclosing
}

// method resolves a method inside the scope binding this.
func (r *resolver) method(m *FunStmt, kind funcKind) {
	r.begin()
	r.define("this")
	r.function(m, kind)
	r.end()
}

func (r *resolver) expr(e Expr) {
	switch e := e.(type) {
	case *LiteralExpr:
	case *VariableExpr:
		if len(r.scopes) > 0 {
			if done, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !done {
				r.fail(e.Name, "cannot read %s in its own initializer", e.Name.Lexeme)
			}
		}
		e.Distance, e.Field = r.reference(e.Name.Lexeme)
	case *AssignExpr:
		r.expr(e.Value)
		e.Distance, e.Field = r.reference(e.Name.Lexeme)
	case *ThisExpr:
		if r.class == nil {
			r.fail(e.Keyword, "this outside class")
			return
		}
		e.Distance = r.local("this")
	case *SuperExpr:
		switch {
		case r.class == nil:
			r.fail(e.Keyword, "super outside class")
		case !r.class.hasSuper:
			r.fail(e.Keyword, "super in class with no superclass")
		default:
			e.Distance = r.local("super")
		}
	case *UnaryExpr:
		r.expr(e.Right)
	case *PostfixExpr:
		r.expr(e.Target)
	case *BinaryExpr:
		r.expr(e.Left)
		r.expr(e.Right)
	case *LogicalExpr:
		r.expr(e.Left)
		r.expr(e.Right)
	case *TernaryExpr:
		r.expr(e.Cond)
		r.expr(e.Then)
		r.expr(e.Else)
	case *CallExpr:
		r.expr(e.Callee)
		for _, a := range e.Args {
			r.expr(a)
		}
	case *GetExpr:
		r.expr(e.Object)
	case *SetExpr:
		r.expr(e.Value)
		r.expr(e.Object)
	case *IndexExpr:
		r.expr(e.Object)
		r.expr(e.Index)
	case *SetIndexExpr:
		r.expr(e.Value)
		r.expr(e.Object)
		r.expr(e.Index)
	case *ArrayExpr:
		for _, el := range e.Elems {
			r.expr(el)
		}
	case *GroupingExpr:
		r.expr(e.Inner)
	default:
		panic(fmt.Sprintf("hslang: unknown expression %T", e))
	}
}
