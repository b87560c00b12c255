package token

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// An Error is a lexical error at a particular token.
type Error struct {
	Tok Token
	Msg string
}

func (err *Error) Error() string {
	return fmt.Sprintf("%s: %s", err.Tok.Pos(), err.Msg)
}

// item is a token or lexing error sent from the lexer goroutine.
type item struct {
	tok Token
	err string
}

// lexFn is a lexer state function. Each lexFn lexes a token, sends it on the
// supplied channel, and returns the next lexFn to use.
type lexFn func(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int)

// Scan lexes src completely. label names the source in token positions. The
// returned tokens always end with an EOF token. If any lexical errors occur,
// including unbalanced brackets, the error is the join of one *Error for
// each.
func Scan(src io.Reader, label string) ([]Token, error) {
	items := make(chan item)
	go lex(bufio.NewReader(src), items)
	var toks []Token
	var errs []error
	for it := range items {
		it.tok.Label = label
		if it.err != "" {
			errs = append(errs, &Error{Tok: it.tok, Msg: it.err})
			continue
		}
		toks = append(toks, it.tok)
	}
	errs = append(errs, balance(toks)...)
	return toks, errors.Join(errs...)
}

// lex converts a source into a stream of tokens, finishing with EOF.
func lex(src *bufio.Reader, items chan<- item) {
	state := eatSpace
	line, col := 1, 1
	for state != nil {
		state, line, col = state(src, items, line, col)
	}
	items <- item{tok: Token{Type: EOF, Line: line, Col: col}}
	close(items)
}

// balance checks that every bracketing pair in toks is matched.
func balance(toks []Token) []error {
	var errs []error
	var stack []Token
	for _, tok := range toks {
		switch {
		case tok.Type.opens:
			stack = append(stack, tok)
		case tok.Type.closes:
			if len(stack) == 0 {
				errs = append(errs, &Error{Tok: tok, Msg: fmt.Sprintf("unexpected %s", tok)})
				continue
			}
			top := stack[len(stack)-1]
			if top.Type.inverse != tok.Type {
				errs = append(errs, &Error{Tok: tok, Msg: fmt.Sprintf("%s does not close %s at %s", tok, top, top.Pos())})
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}
	for _, tok := range stack {
		errs = append(errs, &Error{Tok: tok, Msg: fmt.Sprintf("unclosed %s", tok)})
	}
	return errs
}

// accept appends the next run of characters in src which satisfy the
// predicate to b. Returns b after appending, the first rune which did not
// satisfy the predicate, and any error that occurred. If there was no such
// error, the last rune is unread.
func accept(src *bufio.Reader, predicate func(rune) bool, b []byte) ([]byte, rune, error) {
	r, _, err := src.ReadRune()
	for {
		if err != nil {
			return b, r, err
		}
		if !predicate(r) {
			break
		}
		b = append(b, string(r)...)
		r, _, err = src.ReadRune()
	}
	src.UnreadRune()
	return b, r, nil
}

// lexsend is a shortcut for sending a token with error checking. It returns
// eatSpace as the default lexing function.
func lexsend(err error, items chan<- item, good Token) lexFn {
	if err != nil && err != io.EOF {
		items <- item{tok: good, err: err.Error()}
		return nil
	}
	items <- item{tok: good}
	if err != nil {
		return nil
	}
	return eatSpace
}

// lexfail sends a lexing error and returns eatSpace so that lexing continues.
func lexfail(items chan<- item, tok Token, format string, args ...interface{}) lexFn {
	items <- item{tok: tok, err: fmt.Sprintf(format, args...)}
	return eatSpace
}

func isIdentStart(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' || r >= utf8.RuneSelf
}

func isIdent(r rune) bool {
	return isIdentStart(r) || '0' <= r && r <= '9'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// eatSpace consumes space and decides the next lexFn to use.
func eatSpace(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int) {
	_, r, err := accept(src, func(r rune) bool {
		switch r {
		case '\n':
			line++
			col = 1
			return true
		case ' ', '\r', '\f', '\t', '\v':
			col++
			return true
		}
		return false
	}, nil)
	if err != nil {
		if err != io.EOF {
			items <- item{tok: Token{Type: EOF, Line: line, Col: col}, err: err.Error()}
		}
		return nil, line, col
	}
	switch {
	case isIdentStart(r):
		return lexIdent, line, col
	case isDigit(r):
		return lexNumber, line, col
	case r == '"':
		return lexString, line, col
	case r == '/':
		peek, _ := src.Peek(2)
		if bytes.Equal(peek, []byte("//")) {
			return lexLineComment, line, col
		}
		if bytes.Equal(peek, []byte("/*")) {
			return lexBlockComment, line, col
		}
	}
	return lexSymbol, line, col
}

// lexIdent lexes an identifier or keyword.
func lexIdent(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int) {
	b, _, err := accept(src, isIdent, nil)
	ncol := col + utf8.RuneCount(b)
	typ := Identifier
	if kw := keywords[string(b)]; kw != nil {
		typ = kw
	}
	return lexsend(err, items, Token{Type: typ, Lexeme: string(b), Line: line, Col: col}), line, ncol
}

// lexSymbol lexes the longest symbolic token at the current position.
func lexSymbol(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int) {
	peek, _ := src.Peek(maxSymbolLen)
	for _, t := range symbols {
		if bytes.HasPrefix(peek, []byte(t.repr)) {
			src.Discard(len(t.repr))
			items <- item{tok: Token{Type: t, Lexeme: t.repr, Line: line, Col: col}}
			return eatSpace, line, col + len(t.repr)
		}
	}
	r, _, _ := src.ReadRune()
	return lexfail(items, Token{Type: EOF, Lexeme: string(r), Line: line, Col: col}, "invalid character %q", r), line, col + 1
}

// lexLineComment lexes a // comment.
func lexLineComment(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int) {
	b, _, err := accept(src, func(r rune) bool { return r != '\n' }, nil)
	if err != nil && err != io.EOF {
		return lexsend(err, items, Token{Type: EOF, Line: line, Col: col}), line, col
	}
	return eatSpace, line, col + utf8.RuneCount(b)
}

// lexBlockComment lexes a /* */ comment. Block comments nest.
func lexBlockComment(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int) {
	src.Discard(2)
	var pr rune
	depth := 1
	nline := line
	ncol := col + 2
	pred := func(r rune) bool {
		switch {
		case pr == '*' && r == '/':
			depth--
			if depth <= 0 {
				return false
			}
			r = 0
		case pr == '/' && r == '*':
			depth++
			r = 0
		case r == '\n':
			nline++
			ncol = 0
		}
		pr = r
		ncol++
		return true
	}
	_, _, err := accept(src, pred, nil)
	if err != nil {
		if err == io.EOF {
			return lexfail(items, Token{Type: EOF, Lexeme: "/*", Line: line, Col: col}, "unterminated comment"), nline, ncol
		}
		return lexsend(err, items, Token{Type: EOF, Line: line, Col: col}), nline, ncol
	}
	src.ReadRune() // Re-read the / that accept unreads.
	return eatSpace, nline, ncol + 1
}

// lexNumber lexes a decimal or hexadecimal number.
func lexNumber(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int) {
	tok := Token{Type: Number, Line: line, Col: col}
	b, r, err := accept(src, isDigit, nil)
	if err == nil && (r == 'x' || r == 'X') && string(b) == "0" {
		src.ReadRune()
		b, _, err = accept(src, func(r rune) bool {
			return isDigit(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
		}, append(b, byte(r)))
		tok.Lexeme = string(b)
		ncol := col + len(b)
		n, perr := strconv.ParseUint(tok.Lexeme[2:], 16, 64)
		if perr != nil {
			return lexfail(items, tok, "invalid hexadecimal literal %s", tok.Lexeme), line, ncol
		}
		tok.Literal = float64(n)
		return lexsend(err, items, tok), line, ncol
	}
	if err == nil && r == '.' {
		// Only a fraction if a digit follows; 1..5 is a range.
		peek, _ := src.Peek(2)
		if len(peek) == 2 && isDigit(rune(peek[1])) {
			src.ReadRune()
			b, r, err = accept(src, isDigit, append(b, '.'))
		}
	}
	if err == nil && (r == 'e' || r == 'E') {
		peek, _ := src.Peek(3)
		n := 1
		if len(peek) > 1 && (peek[1] == '+' || peek[1] == '-') {
			n = 2
		}
		if len(peek) > n && isDigit(rune(peek[n])) {
			b = append(b, peek[:n]...)
			src.Discard(n)
			b, r, err = accept(src, isDigit, b)
		}
	}
	tok.Lexeme = string(b)
	ncol := col + len(b)
	f, perr := strconv.ParseFloat(tok.Lexeme, 64)
	if perr != nil {
		return lexfail(items, tok, "invalid numeric literal %s", tok.Lexeme), line, ncol
	}
	tok.Literal = f
	if isIdentStart(r) && err == nil {
		return lexfail(items, tok, "invalid character %q after numeric literal", r), line, ncol
	}
	return lexsend(err, items, tok), line, ncol
}

// lexString lexes a double-quoted string. Escapes are as in Go.
func lexString(src *bufio.Reader, items chan<- item, line, col int) (lexFn, int, int) {
	b := make([]byte, 1, 16)
	src.Read(b)
	ncol := col + 1
	ps := false
	for {
		r, _, err := src.ReadRune()
		if err != nil || r == '\n' {
			if err == nil {
				src.UnreadRune()
			}
			tok := Token{Type: String, Lexeme: string(b), Line: line, Col: col}
			if err != nil && err != io.EOF {
				return lexsend(err, items, tok), line, ncol
			}
			return lexfail(items, tok, "unterminated string"), line, ncol
		}
		ncol++
		b = append(b, string(r)...)
		if r == '\\' {
			ps = !ps
		} else if r == '"' && !ps {
			break
		} else {
			ps = false
		}
	}
	tok := Token{Type: String, Lexeme: string(b), Line: line, Col: col}
	s, err := strconv.Unquote(tok.Lexeme)
	if err != nil {
		return lexfail(items, tok, "invalid string literal %s", tok.Lexeme), line, ncol
	}
	tok.Literal = s
	return lexsend(nil, items, tok), line, ncol
}

// Describe formats a token stream for diagnostics, one token per line.
func Describe(toks []Token) string {
	var b strings.Builder
	for _, tok := range toks {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", tok.Pos(), tok.Type, tok.Lexeme)
	}
	return b.String()
}
