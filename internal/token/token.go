// Package token defines the lexical model of hslang: declaratively composed
// token types, tokens, and the lexer that produces them.
package token

import (
	"fmt"
	"sort"
)

// A Type is the declarative description of one kind of lexical unit.
// Symbolic token types are built from a small set of composition rules, so
// the representation of every operator is derived from the representations
// of the operators it is made of.
//
// Type values are compared by identity. All token types are created
// during package initialization and never modified afterward.
type Type struct {
	name string
	// repr is the canonical text of the token. It is empty for token types
	// whose text varies, such as identifiers and literals.
	repr string
	// parts are the token types this one was composed from, if any.
	parts []*Type

	keyword    bool
	standalone bool
	reserved   bool

	assignsWith   *Type
	defaultLexeme string
	inverse       *Type
	// opens and closes mark pair types the lexer balance-checks.
	opens, closes bool
}

// Name returns the token type's name, e.g. "GREATER_EQUAL".
func (t *Type) Name() string {
	return t.name
}

// Representation returns the canonical text of the token type. For composed
// types, this is the concatenation of the representations of its parts.
func (t *Type) Representation() string {
	return t.repr
}

// Keyword reports whether the token type is a word of the language.
func (t *Type) Keyword() bool {
	return t.keyword
}

// StandaloneStatement reports whether a bare occurrence of the token type may
// begin a statement.
func (t *Type) StandaloneStatement() bool {
	return t.standalone
}

// Reserved reports whether the token type's text cannot be used as an
// identifier.
func (t *Type) Reserved() bool {
	return t.reserved
}

// AssignsWith returns the operator a compound-assignment token type augments,
// e.g. PLUS for PLUS_EQUAL. It returns nil for all other token types.
func (t *Type) AssignsWith() *Type {
	return t.assignsWith
}

// DefaultLexeme returns the synthetic text for tokens of this type which do
// not appear in source, such as the name of an implicit constructor. If the
// type has no default lexeme, this is its representation.
func (t *Type) DefaultLexeme() string {
	if t.defaultLexeme != "" {
		return t.defaultLexeme
	}
	return t.repr
}

// Inverse returns the partner of a pair token type, e.g. RIGHT_PAREN for
// LEFT_PAREN, or nil if the type is not part of a pair.
func (t *Type) Inverse() *Type {
	return t.inverse
}

// Parts returns the token types this one was composed from. The result is
// nil for fixed and non-symbolic types.
func (t *Type) Parts() []*Type {
	return t.parts
}

// String returns the token type's name.
func (t *Type) String() string {
	return t.name
}

// allTypes is every token type in declaration order.
var allTypes []*Type

// tokenOption modifies a token type during declaration.
type tokenOption func(*Type)

func declare(t *Type, opts ...tokenOption) *Type {
	for _, opt := range opts {
		opt(t)
	}
	allTypes = append(allTypes, t)
	return t
}

// fixed declares a token type matching exactly one character.
func fixed(name string, c byte, opts ...tokenOption) *Type {
	return declare(&Type{name: name, repr: string(c)}, opts...)
}

// repeats declares a token type made of its base's representation twice.
func repeats(name string, base *Type, opts ...tokenOption) *Type {
	return declare(&Type{name: name, repr: base.repr + base.repr, parts: []*Type{base, base}}, opts...)
}

// combines declares a token type made of two different token types read
// consecutively. Either part may itself be composed.
func combines(name string, a, b *Type, opts ...tokenOption) *Type {
	if a == b {
		panic(fmt.Sprintf("hslang: %s combines %s with itself; use repeats", name, a))
	}
	return declare(&Type{name: name, repr: a.repr + b.repr, parts: []*Type{a, b}}, opts...)
}

// word declares a keyword. Keywords are reserved unless declared with
// contextual.
func word(name, text string, opts ...tokenOption) *Type {
	t := &Type{name: name, repr: text, keyword: true, reserved: true}
	return declare(t, opts...)
}

// variable declares a token type whose text varies between occurrences.
func variable(name string) *Type {
	return declare(&Type{name: name})
}

func standalone(t *Type) { t.standalone = true }
func contextual(t *Type) { t.reserved = false }

func assigns(base *Type) tokenOption {
	return func(t *Type) { t.assignsWith = base }
}

func defaultLexeme(s string) tokenOption {
	return func(t *Type) { t.defaultLexeme = s }
}

// pair links two token types as each other's inverse. If balanced is true,
// the lexer requires every open to be matched by its close.
func pair(open, close *Type, balanced bool) {
	open.inverse = close
	close.inverse = open
	open.opens = balanced
	close.closes = balanced
}

// Fixed single-character token types.
var (
	LeftParen  = fixed("LEFT_PAREN", '(')
	RightParen = fixed("RIGHT_PAREN", ')')
	LeftBrace  = fixed("LEFT_BRACE", '{', standalone)
	RightBrace = fixed("RIGHT_BRACE", '}')
	ArrayOpen  = fixed("ARRAY_OPEN", '[')
	ArrayClose = fixed("ARRAY_CLOSE", ']')
	Comma      = fixed("COMMA", ',')
	Dot        = fixed("DOT", '.')
	Semicolon  = fixed("SEMICOLON", ';')
	Colon      = fixed("COLON", ':')
	Question   = fixed("QUESTION_MARK", '?')
	Plus       = fixed("PLUS", '+')
	Minus      = fixed("MINUS", '-')
	Star       = fixed("STAR", '*')
	Slash      = fixed("SLASH", '/')
	Modulo     = fixed("MODULO", '%')
	Bang       = fixed("BANG", '!')
	Equal      = fixed("EQUAL", '=')
	Less       = fixed("LESS", '<')
	Greater    = fixed("GREATER", '>')
	Ampersand  = fixed("AMPERSAND", '&')
	Pipe       = fixed("PIPE", '|')
	Caret      = fixed("CARET", '^')
	Complement = fixed("COMPLEMENT", '~')
)

// Doubled token types.
var (
	Increment  = repeats("INCREMENT", Plus)
	Decrement  = repeats("DECREMENT", Minus)
	EqualEqual = repeats("EQUAL_EQUAL", Equal)
	And        = repeats("AND", Ampersand)
	Or         = repeats("OR", Pipe)
	ShiftLeft  = repeats("SHIFT_LEFT", Less)
	ShiftRight = repeats("SHIFT_RIGHT", Greater)
	Range      = repeats("RANGE", Dot)
)

// Combined token types.
var (
	BangEqual       = combines("BANG_EQUAL", Bang, Equal)
	LessEqual       = combines("LESS_EQUAL", Less, Equal)
	GreaterEqual    = combines("GREATER_EQUAL", Greater, Equal)
	PlusEqual       = combines("PLUS_EQUAL", Plus, Equal, assigns(Plus))
	MinusEqual      = combines("MINUS_EQUAL", Minus, Equal, assigns(Minus))
	StarEqual       = combines("STAR_EQUAL", Star, Equal, assigns(Star))
	SlashEqual      = combines("SLASH_EQUAL", Slash, Equal, assigns(Slash))
	ModuloEqual     = combines("MODULO_EQUAL", Modulo, Equal, assigns(Modulo))
	AmpersandEqual  = combines("AMPERSAND_EQUAL", Ampersand, Equal, assigns(Ampersand))
	PipeEqual       = combines("PIPE_EQUAL", Pipe, Equal, assigns(Pipe))
	CaretEqual      = combines("CARET_EQUAL", Caret, Equal, assigns(Caret))
	ShiftLeftEqual  = combines("SHIFT_LEFT_EQUAL", ShiftLeft, Equal, assigns(ShiftLeft))
	ShiftRightEqual = combines("SHIFT_RIGHT_EQUAL", ShiftRight, Equal, assigns(ShiftRight))
)

// Keywords.
var (
	Class       = word("CLASS", "class", standalone)
	Extends     = word("EXTENDS", "extends")
	Fun         = word("FUN", "fun", standalone)
	Var         = word("VAR", "var", standalone)
	This        = word("THIS", "this")
	Super       = word("SUPER", "super")
	If          = word("IF", "if", standalone)
	Else        = word("ELSE", "else")
	While       = word("WHILE", "while", standalone)
	Do          = word("DO", "do", standalone)
	For         = word("FOR", "for", standalone)
	Foreach     = word("FOREACH", "foreach", standalone)
	In          = word("IN", "in")
	Repeat      = word("REPEAT", "repeat", standalone)
	Switch      = word("SWITCH", "switch", standalone)
	Case        = word("CASE", "case")
	Default     = word("DEFAULT", "default")
	Return      = word("RETURN", "return", standalone)
	Break       = word("BREAK", "break", standalone)
	Continue    = word("CONTINUE", "continue", standalone)
	Print       = word("PRINT", "print", standalone)
	True        = word("TRUE", "true")
	False       = word("FALSE", "false")
	Null        = word("NULL", "null")
	InstanceOf  = word("INSTANCEOF", "instanceof")
	Test        = word("TEST", "test", standalone, contextual)
	Module      = word("MODULE", "module", standalone, contextual)
	Native      = word("NATIVE", "native", standalone, contextual)
	Constructor = word("CONSTRUCTOR", "constructor", contextual, defaultLexeme("constructor"))
	Final       = word("FINAL", "final", standalone, contextual)
	Dynamic     = word("DYNAMIC", "dynamic", standalone, contextual)
)

// Token types whose text varies.
var (
	Identifier = variable("IDENTIFIER")
	Number     = variable("NUMBER")
	String     = variable("STRING")
	EOF        = variable("EOF")
)

// keywords maps keyword text to its token type.
var keywords map[string]*Type

// symbols lists symbolic token types ordered longest representation first,
// so that the first match at a position is the maximal munch.
var symbols []*Type

// maxSymbolLen is the length of the longest symbolic representation.
var maxSymbolLen int

func init() {
	pair(LeftParen, RightParen, true)
	pair(LeftBrace, RightBrace, true)
	pair(ArrayOpen, ArrayClose, true)
	// Angle brackets are also comparison operators, so they can't be
	// balance-checked.
	pair(Less, Greater, false)

	keywords = make(map[string]*Type)
	for _, t := range allTypes {
		switch {
		case t.keyword:
			keywords[t.repr] = t
		case t.repr != "":
			symbols = append(symbols, t)
			if len(t.repr) > maxSymbolLen {
				maxSymbolLen = len(t.repr)
			}
		}
	}
	sort.SliceStable(symbols, func(i, j int) bool { return len(symbols[i].repr) > len(symbols[j].repr) })
}

// Types returns every declared token type.
func Types() []*Type {
	return append([]*Type(nil), allTypes...)
}

// Lookup returns the token type for a keyword, or nil if text is not a
// keyword.
func Lookup(text string) *Type {
	return keywords[text]
}

// A Token is a single lexical element.
type Token struct {
	Type *Type
	// Lexeme is the token's source text.
	Lexeme string
	// Literal is the value of number and string tokens.
	Literal interface{}
	// Label is the name of the source the token was read from.
	Label string
	// Line and Col are the one-based position of the token's first
	// character.
	Line, Col int
}

// SyntheticToken creates a token of type t with no source position, using
// the type's default lexeme as its text.
func SyntheticToken(t *Type) Token {
	return Token{Type: t, Lexeme: t.DefaultLexeme()}
}

// String returns a diagnostic representation of the token.
func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

// Pos formats the token's position as label:line:col.
func (t Token) Pos() string {
	label := t.Label
	if label == "" {
		label = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", label, t.Line, t.Col)
}
