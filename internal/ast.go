package internal

import "github.com/zephyrtronium/hslang/internal/token"

// Expr is an expression node. The concrete type is always one of the *Expr
// types in this file.
type Expr interface {
	exprNode()
}

// Stmt is a statement node. The concrete type is always one of the *Stmt
// types in this file.
type Stmt interface {
	stmtNode()
}

// Program is a parsed source unit.
type Program struct {
	Label string
	Stmts []Stmt
	// resolved is set once the resolver has annotated the program.
	resolved bool
}

// Unresolved is the distance of a reference that the resolver could not
// bind to a local scope. Such references are looked up by name starting
// from the global scope.
const Unresolved = -1

type (
	// LiteralExpr is a number, string, boolean, or null literal.
	LiteralExpr struct {
		Tok   token.Token
		Value Value
	}

	// VariableExpr is a reference to a named binding. If Field is set, the
	// name is an implicit reference to a field of this, and Distance counts
	// the hops to the scope holding the method's parameters.
	VariableExpr struct {
		Name     token.Token
		Distance int
		Field    bool
	}

	// AssignExpr assigns to a named binding. Op is the compound operator's
	// base, or nil for plain assignment.
	AssignExpr struct {
		Name     token.Token
		Op       *token.Type
		Value    Expr
		Distance int
		Field    bool
	}

	ThisExpr struct {
		Keyword  token.Token
		Distance int
	}

	// SuperExpr is a method lookup on the superclass. Distance is the hops to
	// the scope binding super; this is always one scope nearer.
	SuperExpr struct {
		Keyword  token.Token
		Method   token.Token
		Distance int
	}

	// UnaryExpr is a prefix operation. Increments and decrements require an
	// assignable operand.
	UnaryExpr struct {
		Op    token.Token
		Right Expr
	}

	// PostfixExpr is a postfix increment or decrement.
	PostfixExpr struct {
		Op     token.Token
		Target Expr
	}

	BinaryExpr struct {
		Left  Expr
		Op    token.Token
		Right Expr
	}

	// LogicalExpr is a short-circuiting && or ||.
	LogicalExpr struct {
		Left  Expr
		Op    token.Token
		Right Expr
	}

	TernaryExpr struct {
		Cond     Expr
		Question token.Token
		Then     Expr
		Else     Expr
	}

	CallExpr struct {
		Callee Expr
		Paren  token.Token
		Args   []Expr
	}

	// GetExpr is a property read.
	GetExpr struct {
		Object Expr
		Name   token.Token
	}

	// SetExpr is a property write, possibly compound.
	SetExpr struct {
		Object Expr
		Name   token.Token
		Op     *token.Type
		Value  Expr
	}

	IndexExpr struct {
		Object  Expr
		Bracket token.Token
		Index   Expr
	}

	SetIndexExpr struct {
		Object  Expr
		Bracket token.Token
		Index   Expr
		Op      *token.Type
		Value   Expr
	}

	ArrayExpr struct {
		Bracket token.Token
		Elems   []Expr
	}

	GroupingExpr struct {
		Inner Expr
	}
)

func (*LiteralExpr) exprNode()  {}
func (*VariableExpr) exprNode() {}
func (*AssignExpr) exprNode()   {}
func (*ThisExpr) exprNode()     {}
func (*SuperExpr) exprNode()    {}
func (*UnaryExpr) exprNode()    {}
func (*PostfixExpr) exprNode()  {}
func (*BinaryExpr) exprNode()   {}
func (*LogicalExpr) exprNode()  {}
func (*TernaryExpr) exprNode()  {}
func (*CallExpr) exprNode()     {}
func (*GetExpr) exprNode()      {}
func (*SetExpr) exprNode()      {}
func (*IndexExpr) exprNode()    {}
func (*SetIndexExpr) exprNode() {}
func (*ArrayExpr) exprNode()    {}
func (*GroupingExpr) exprNode() {}

type (
	ExprStmt struct {
		Expr Expr
	}

	PrintStmt struct {
		Keyword token.Token
		Expr    Expr
	}

	VarStmt struct {
		Name token.Token
		Init Expr
	}

	BlockStmt struct {
		Stmts []Stmt
	}

	IfStmt struct {
		Keyword token.Token
		Cond    Expr
		Then    Stmt
		Else    Stmt
	}

	WhileStmt struct {
		Keyword token.Token
		Cond    Expr
		Body    Stmt
	}

	DoStmt struct {
		Keyword token.Token
		Body    Stmt
		Cond    Expr
	}

	// ForStmt is a C-style for loop. Any of Init, Cond, and Incr may be nil.
	ForStmt struct {
		Keyword token.Token
		Init    Stmt
		Cond    Expr
		Incr    Expr
		Body    Stmt
	}

	ForeachStmt struct {
		Keyword  token.Token
		Name     token.Token
		Iterable Expr
		Body     Stmt
	}

	RepeatStmt struct {
		Keyword token.Token
		Count   Expr
		Body    Stmt
	}

	// SwitchStmt selects the first case whose value equals the subject.
	SwitchStmt struct {
		Keyword token.Token
		Subject Expr
		Cases   []*CaseClause
		Default *CaseClause
	}

	// CaseClause is one arm of a switch. Value is nil for the default arm.
	CaseClause struct {
		Keyword token.Token
		Value   Expr
		Body    []Stmt
	}

	ReturnStmt struct {
		Keyword token.Token
		Value   Expr
	}

	BreakStmt struct {
		Keyword token.Token
	}

	ContinueStmt struct {
		Keyword token.Token
	}

	// TestStmt is an in-language test whose returned value is recorded as
	// its result.
	TestStmt struct {
		Keyword token.Token
		Name    token.Token
		Body    []Stmt
	}

	// ModuleStmt imports every function of a native module into the global
	// scope.
	ModuleStmt struct {
		Keyword token.Token
		Name    token.Token
	}

	// NativeStmt declares a single native function in the current scope.
	NativeStmt struct {
		Keyword token.Token
		Module  token.Token
		Name    token.Token
		Params  []token.Token
	}

	// FunStmt declares a function, method, or constructor.
	FunStmt struct {
		Name   token.Token
		Params []token.Token
		Body   []Stmt
	}

	ClassStmt struct {
		Name        token.Token
		Superclass  Expr
		Constructor *FunStmt
		Methods     []*FunStmt
		Fields      []*FieldDecl
		Final       bool
		Dynamic     bool
	}

	// FieldDecl declares a field of a class. Init is nil if the field starts
	// as null.
	FieldDecl struct {
		Name token.Token
		Init Expr
	}
)

func (*ExprStmt) stmtNode()     {}
func (*PrintStmt) stmtNode()    {}
func (*VarStmt) stmtNode()      {}
func (*BlockStmt) stmtNode()    {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoStmt) stmtNode()       {}
func (*ForStmt) stmtNode()      {}
func (*ForeachStmt) stmtNode()  {}
func (*RepeatStmt) stmtNode()   {}
func (*SwitchStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*TestStmt) stmtNode()     {}
func (*ModuleStmt) stmtNode()   {}
func (*NativeStmt) stmtNode()   {}
func (*FunStmt) stmtNode()      {}
func (*ClassStmt) stmtNode()    {}

// exprToken returns a token representative of an expression's position.
func exprToken(e Expr) token.Token {
	switch e := e.(type) {
	case *LiteralExpr:
		return e.Tok
	case *VariableExpr:
		return e.Name
	case *AssignExpr:
		return e.Name
	case *ThisExpr:
		return e.Keyword
	case *SuperExpr:
		return e.Keyword
	case *UnaryExpr:
		return e.Op
	case *PostfixExpr:
		return e.Op
	case *BinaryExpr:
		return e.Op
	case *LogicalExpr:
		return e.Op
	case *TernaryExpr:
		return e.Question
	case *CallExpr:
		return e.Paren
	case *GetExpr:
		return e.Name
	case *SetExpr:
		return e.Name
	case *IndexExpr:
		return e.Bracket
	case *SetIndexExpr:
		return e.Bracket
	case *ArrayExpr:
		return e.Bracket
	case *GroupingExpr:
		return exprToken(e.Inner)
	}
	return token.Token{}
}
