package internal

/*
This file converts lexer tokens into the statement tree. Precedence climbs
from assignment down to primary expressions, one function per level.
*/

import (
	"errors"
	"fmt"
	"io"

	"github.com/zephyrtronium/hslang/internal/token"
)

// Parse converts source code into an unresolved program. If the source
// contains lexical or syntax errors, the error is the join of one *Exception
// for each.
func Parse(src io.Reader, label string) (*Program, error) {
	toks, err := token.Scan(src, label)
	if err != nil {
		return nil, lexErrors(err)
	}
	p := parser{toks: toks}
	prog := &Program{Label: label}
	for !p.check(token.EOF) {
		if s := p.declaration(); s != nil {
			prog.Stmts = append(prog.Stmts, s)
		}
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return prog, nil
}

type parser struct {
	toks []token.Token
	pos  int
	errs []error
}

// bailout is panicked to abandon a declaration after a syntax error.
type bailout struct{}

func (p *parser) peek() token.Token {
	return p.toks[p.pos]
}

// lookahead returns the token n places after the current one, or EOF.
func (p *parser) lookahead(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) previous() token.Token {
	return p.toks[p.pos-1]
}

func (p *parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) check(t *token.Type) bool {
	return p.peek().Type == t
}

// match advances past the current token if it has any of the given types.
func (p *parser) match(types ...*token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(t *token.Type, context string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(p.peek(), "expected %q %s, found %s", t.Representation(), context, p.peek())
	panic("unreachable")
}

// isName reports whether a token can be used as an identifier.
func isName(tok token.Token) bool {
	return tok.Type == token.Identifier || tok.Type.Keyword() && !tok.Type.Reserved()
}

func (p *parser) name(context string) token.Token {
	if isName(p.peek()) {
		return p.advance()
	}
	p.fail(p.peek(), "expected name %s, found %s", context, p.peek())
	panic("unreachable")
}

// fail records a syntax error and bails out of the current declaration.
func (p *parser) fail(tok token.Token, format string, args ...interface{}) {
	p.errs = append(p.errs, &Exception{
		Kind:  EvaluationError,
		Phase: PhaseParse,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
		Err:   ErrSyntax,
	})
	panic(bailout{})
}

// synchronize skips tokens until one that can begin a statement.
func (p *parser) synchronize() {
	p.advance()
	for !p.check(token.EOF) {
		if p.previous().Type == token.Semicolon {
			return
		}
		if p.peek().Type.StandaloneStatement() {
			return
		}
		p.advance()
	}
}

func (p *parser) declaration() (s Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
			s = nil
		}
	}()
	switch tok := p.peek(); tok.Type {
	case token.Class:
		p.advance()
		return p.classDecl(false, false)
	case token.Final, token.Dynamic:
		if p.isClassDecl() {
			final, dynamic := false, false
			for !p.match(token.Class) {
				if p.advance().Type == token.Final {
					final = true
				} else {
					dynamic = true
				}
			}
			return p.classDecl(final, dynamic)
		}
	case token.Fun:
		p.advance()
		return p.function("function")
	case token.Var:
		p.advance()
		return p.varDecl()
	case token.Native:
		if p.lookahead(1).Type == token.Fun {
			p.advance()
			return p.nativeDecl(tok)
		}
	}
	return p.statement()
}

// isClassDecl reports whether a run of class modifiers starts here.
func (p *parser) isClassDecl() bool {
	for i := 0; ; i++ {
		switch p.lookahead(i).Type {
		case token.Final, token.Dynamic:
		case token.Class:
			return i > 0
		default:
			return false
		}
	}
}

func (p *parser) classDecl(final, dynamic bool) Stmt {
	c := &ClassStmt{Name: p.name("after class"), Final: final, Dynamic: dynamic}
	if p.match(token.Extends) {
		c.Superclass = p.call()
	}
	p.consume(token.LeftBrace, "before class body")
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		switch tok := p.peek(); tok.Type {
		case token.Constructor:
			if c.Constructor != nil {
				p.fail(tok, "duplicate constructor in class %s", c.Name.Lexeme)
			}
			c.Constructor = p.function("constructor")
		case token.Fun:
			p.advance()
			c.Methods = append(c.Methods, p.function("method"))
		case token.Var:
			p.advance()
			f := &FieldDecl{Name: p.name("in field declaration")}
			if p.match(token.Equal) {
				f.Init = p.expression()
			}
			p.consume(token.Semicolon, "after field declaration")
			c.Fields = append(c.Fields, f)
		default:
			p.fail(tok, "expected class member, found %s", tok)
		}
	}
	p.consume(token.RightBrace, "after class body")
	return c
}

// function parses a function's name, parameters, and body. kind describes
// the function in error messages.
func (p *parser) function(kind string) *FunStmt {
	f := &FunStmt{Name: p.name("for " + kind)}
	f.Params = p.params(kind)
	p.consume(token.LeftBrace, "before "+kind+" body")
	f.Body = p.block()
	return f
}

func (p *parser) params(kind string) []token.Token {
	p.consume(token.LeftParen, "after "+kind+" name")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			params = append(params, p.name("for parameter"))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "after parameters")
	return params
}

func (p *parser) varDecl() Stmt {
	v := &VarStmt{Name: p.name("in variable declaration")}
	if p.match(token.Equal) {
		v.Init = p.expression()
	}
	p.consume(token.Semicolon, "after variable declaration")
	return v
}

func (p *parser) nativeDecl(kw token.Token) Stmt {
	p.consume(token.Fun, "after native")
	n := &NativeStmt{Keyword: kw, Module: p.name("for native module")}
	p.consume(token.Dot, "after native module name")
	n.Name = p.name("for native function")
	n.Params = p.params("native function")
	p.consume(token.Semicolon, "after native declaration")
	return n
}

func (p *parser) statement() Stmt {
	tok := p.peek()
	switch tok.Type {
	case token.If:
		p.advance()
		return p.ifStmt(tok)
	case token.While:
		p.advance()
		p.consume(token.LeftParen, "after while")
		cond := p.expression()
		p.consume(token.RightParen, "after condition")
		return &WhileStmt{Keyword: tok, Cond: cond, Body: p.statement()}
	case token.Do:
		p.advance()
		body := p.statement()
		p.consume(token.While, "after do body")
		p.consume(token.LeftParen, "after while")
		cond := p.expression()
		p.consume(token.RightParen, "after condition")
		p.consume(token.Semicolon, "after do-while")
		return &DoStmt{Keyword: tok, Body: body, Cond: cond}
	case token.For:
		p.advance()
		return p.forStmt(tok)
	case token.Foreach:
		p.advance()
		p.consume(token.LeftParen, "after foreach")
		p.match(token.Var)
		name := p.name("for foreach variable")
		p.consume(token.In, "after foreach variable")
		it := p.expression()
		p.consume(token.RightParen, "after foreach collection")
		return &ForeachStmt{Keyword: tok, Name: name, Iterable: it, Body: p.statement()}
	case token.Repeat:
		p.advance()
		p.consume(token.LeftParen, "after repeat")
		n := p.expression()
		p.consume(token.RightParen, "after repeat count")
		return &RepeatStmt{Keyword: tok, Count: n, Body: p.statement()}
	case token.Switch:
		p.advance()
		return p.switchStmt(tok)
	case token.Return:
		p.advance()
		r := &ReturnStmt{Keyword: tok}
		if !p.check(token.Semicolon) {
			r.Value = p.expression()
		}
		p.consume(token.Semicolon, "after return")
		return r
	case token.Break:
		p.advance()
		p.consume(token.Semicolon, "after break")
		return &BreakStmt{Keyword: tok}
	case token.Continue:
		p.advance()
		p.consume(token.Semicolon, "after continue")
		return &ContinueStmt{Keyword: tok}
	case token.Print:
		p.advance()
		e := p.expression()
		p.consume(token.Semicolon, "after print value")
		return &PrintStmt{Keyword: tok, Expr: e}
	case token.LeftBrace:
		p.advance()
		return &BlockStmt{Stmts: p.block()}
	case token.Test:
		if p.lookahead(1).Type == token.String {
			p.advance()
			name := p.advance()
			p.consume(token.LeftBrace, "before test body")
			return &TestStmt{Keyword: tok, Name: name, Body: p.block()}
		}
	case token.Module:
		next := p.lookahead(1)
		if next.Type == token.String || isName(next) && p.lookahead(2).Type == token.Semicolon {
			p.advance()
			name := p.advance()
			p.consume(token.Semicolon, "after module name")
			return &ModuleStmt{Keyword: tok, Name: name}
		}
	}
	e := p.expression()
	p.consume(token.Semicolon, "after expression")
	return &ExprStmt{Expr: e}
}

// block parses declarations up to and including a closing brace.
func (p *parser) block() []Stmt {
	var stmts []Stmt
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.consume(token.RightBrace, "after block")
	return stmts
}

func (p *parser) ifStmt(kw token.Token) Stmt {
	p.consume(token.LeftParen, "after if")
	cond := p.expression()
	p.consume(token.RightParen, "after if condition")
	s := &IfStmt{Keyword: kw, Cond: cond, Then: p.statement()}
	if p.match(token.Else) {
		s.Else = p.statement()
	}
	return s
}

func (p *parser) forStmt(kw token.Token) Stmt {
	p.consume(token.LeftParen, "after for")
	s := &ForStmt{Keyword: kw}
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		s.Init = p.varDecl()
	default:
		e := p.expression()
		p.consume(token.Semicolon, "after loop initializer")
		s.Init = &ExprStmt{Expr: e}
	}
	if !p.check(token.Semicolon) {
		s.Cond = p.expression()
	}
	p.consume(token.Semicolon, "after loop condition")
	if !p.check(token.RightParen) {
		s.Incr = p.expression()
	}
	p.consume(token.RightParen, "after for clauses")
	s.Body = p.statement()
	return s
}

func (p *parser) switchStmt(kw token.Token) Stmt {
	p.consume(token.LeftParen, "after switch")
	s := &SwitchStmt{Keyword: kw, Subject: p.expression()}
	p.consume(token.RightParen, "after switch subject")
	p.consume(token.LeftBrace, "before switch body")
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		tok := p.advance()
		c := &CaseClause{Keyword: tok}
		switch tok.Type {
		case token.Case:
			if s.Default != nil {
				p.fail(tok, "case after default")
			}
			c.Value = p.or()
			s.Cases = append(s.Cases, c)
		case token.Default:
			if s.Default != nil {
				p.fail(tok, "duplicate default")
			}
			s.Default = c
		default:
			p.fail(tok, "expected case or default, found %s", tok)
		}
		p.consume(token.Colon, "after case")
		for !p.check(token.Case) && !p.check(token.Default) && !p.check(token.RightBrace) && !p.check(token.EOF) {
			if d := p.declaration(); d != nil {
				c.Body = append(c.Body, d)
			}
		}
	}
	p.consume(token.RightBrace, "after switch body")
	return s
}

func (p *parser) expression() Expr {
	return p.assignment()
}

func (p *parser) assignment() Expr {
	e := p.ternary()
	tok := p.peek()
	if tok.Type != token.Equal && tok.Type.AssignsWith() == nil {
		return e
	}
	p.advance()
	op := tok.Type.AssignsWith()
	v := p.assignment()
	switch t := e.(type) {
	case *VariableExpr:
		return &AssignExpr{Name: t.Name, Op: op, Value: v, Distance: Unresolved}
	case *GetExpr:
		return &SetExpr{Object: t.Object, Name: t.Name, Op: op, Value: v}
	case *IndexExpr:
		return &SetIndexExpr{Object: t.Object, Bracket: t.Bracket, Index: t.Index, Op: op, Value: v}
	}
	p.fail(tok, "invalid assignment target")
	panic("unreachable")
}

func (p *parser) ternary() Expr {
	e := p.or()
	if p.match(token.Question) {
		q := p.previous()
		then := p.expression()
		p.consume(token.Colon, "in conditional expression")
		return &TernaryExpr{Cond: e, Question: q, Then: then, Else: p.ternary()}
	}
	return e
}

func (p *parser) or() Expr {
	e := p.and()
	for p.match(token.Or) {
		op := p.previous()
		e = &LogicalExpr{Left: e, Op: op, Right: p.and()}
	}
	return e
}

func (p *parser) and() Expr {
	e := p.binary(0)
	for p.match(token.And) {
		op := p.previous()
		e = &LogicalExpr{Left: e, Op: op, Right: p.binary(0)}
	}
	return e
}

// binaryLevels lists binary operators from loosest to tightest binding.
var binaryLevels = [][]*token.Type{
	{token.Pipe},
	{token.Caret},
	{token.Ampersand},
	{token.EqualEqual, token.BangEqual},
	{token.Less, token.LessEqual, token.Greater, token.GreaterEqual, token.InstanceOf},
	{token.ShiftLeft, token.ShiftRight},
	{token.Range},
	{token.Plus, token.Minus},
	{token.Star, token.Slash, token.Modulo},
}

// binary parses left-associative binary operators at the given level.
func (p *parser) binary(level int) Expr {
	if level >= len(binaryLevels) {
		return p.unary()
	}
	e := p.binary(level + 1)
	for p.match(binaryLevels[level]...) {
		op := p.previous()
		e = &BinaryExpr{Left: e, Op: op, Right: p.binary(level + 1)}
		if op.Type == token.Range {
			// Ranges don't chain.
			break
		}
	}
	return e
}

func (p *parser) unary() Expr {
	if p.match(token.Bang, token.Minus, token.Complement, token.Increment, token.Decrement) {
		op := p.previous()
		right := p.unary()
		if op.Type == token.Increment || op.Type == token.Decrement {
			p.assignable(op, right)
		}
		return &UnaryExpr{Op: op, Right: right}
	}
	return p.postfix()
}

func (p *parser) postfix() Expr {
	e := p.call()
	if p.match(token.Increment, token.Decrement) {
		op := p.previous()
		p.assignable(op, e)
		return &PostfixExpr{Op: op, Target: e}
	}
	return e
}

// assignable requires e to be a valid target for an increment or decrement.
func (p *parser) assignable(op token.Token, e Expr) {
	switch e.(type) {
	case *VariableExpr, *GetExpr, *IndexExpr:
		return
	}
	p.fail(op, "invalid %s operand", op.Lexeme)
}

func (p *parser) call() Expr {
	e := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			c := &CallExpr{Callee: e, Paren: p.previous()}
			c.Args = p.arguments(token.RightParen)
			e = c
		case p.match(token.Dot):
			tok := p.peek()
			if tok.Type != token.Identifier && !tok.Type.Keyword() {
				p.fail(tok, "expected property name after '.', found %s", tok)
			}
			e = &GetExpr{Object: e, Name: p.advance()}
		case p.match(token.ArrayOpen):
			b := p.previous()
			idx := p.expression()
			p.consume(token.ArrayClose, "after index")
			e = &IndexExpr{Object: e, Bracket: b, Index: idx}
		default:
			return e
		}
	}
}

// arguments parses a comma-separated expression list through close.
func (p *parser) arguments(close *token.Type) []Expr {
	var args []Expr
	if !p.check(close) {
		for {
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(close, "after arguments")
	return args
}

func (p *parser) primary() Expr {
	tok := p.peek()
	switch tok.Type {
	case token.Number, token.String:
		p.advance()
		return &LiteralExpr{Tok: tok, Value: tok.Literal}
	case token.True:
		p.advance()
		return &LiteralExpr{Tok: tok, Value: true}
	case token.False:
		p.advance()
		return &LiteralExpr{Tok: tok, Value: false}
	case token.Null:
		p.advance()
		return &LiteralExpr{Tok: tok, Value: nil}
	case token.This:
		p.advance()
		return &ThisExpr{Keyword: tok, Distance: Unresolved}
	case token.Super:
		p.advance()
		p.consume(token.Dot, "after super")
		return &SuperExpr{Keyword: tok, Method: p.name("for superclass method"), Distance: Unresolved}
	case token.LeftParen:
		p.advance()
		e := p.expression()
		p.consume(token.RightParen, "after expression")
		return &GroupingExpr{Inner: e}
	case token.ArrayOpen:
		p.advance()
		return &ArrayExpr{Bracket: tok, Elems: p.arguments(token.ArrayClose)}
	}
	if isName(tok) {
		p.advance()
		return &VariableExpr{Name: tok, Distance: Unresolved}
	}
	p.fail(tok, "expected expression, found %s", tok)
	panic("unreachable")
}
