package token

import (
	"errors"
	"strings"
	"testing"
)

// TestLexSingles tests that individual tokens have the correct types and
// values.
func TestLexSingles(t *testing.T) {
	cases := map[string]struct {
		text string
		typ  *Type
		lit  interface{}
	}{
		"Ident-alpha":     {"abcd", Identifier, nil},
		"Ident-alnum":     {"a123", Identifier, nil},
		"Ident-under":     {"_a_b", Identifier, nil},
		"Ident-unicode":   {"héllo", Identifier, nil},
		"Keyword-class":   {"class", Class, nil},
		"Keyword-test":    {"test", Test, nil},
		"Number-int":      {"123", Number, 123.0},
		"Number-frac":     {"1.5", Number, 1.5},
		"Number-exp":      {"1e3", Number, 1000.0},
		"Number-exp-sign": {"25e-2", Number, 0.25},
		"Number-hex":      {"0x1F", Number, 31.0},
		"String-empty":    {`""`, String, ""},
		"String-plain":    {`"abc"`, String, "abc"},
		"String-escape":   {`"a\n\"b\""`, String, "a\n\"b\""},
		"String-unicode":  {`"\u00e9"`, String, "é"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			toks, err := Scan(strings.NewReader(c.text), name)
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.text, err)
			}
			if len(toks) != 2 {
				t.Fatalf("%q: want 2 tokens, have %d:\n%s", c.text, len(toks), Describe(toks))
			}
			if toks[0].Type != c.typ {
				t.Errorf("%q: want type %s, have %s", c.text, c.typ, toks[0].Type)
			}
			if toks[0].Lexeme != c.text {
				t.Errorf("%q: want lexeme %q, have %q", c.text, c.text, toks[0].Lexeme)
			}
			if toks[0].Literal != c.lit {
				t.Errorf("%q: want literal %#v, have %#v", c.text, c.lit, toks[0].Literal)
			}
			if toks[1].Type != EOF {
				t.Errorf("%q: last token is %s, not EOF", c.text, toks[1].Type)
			}
		})
	}
}

// TestLexSymbols tests that every symbolic token type lexes as exactly one
// token of that type.
func TestLexSymbols(t *testing.T) {
	for _, typ := range symbols {
		if typ.opens || typ.closes {
			continue
		}
		t.Run(typ.Name(), func(t *testing.T) {
			toks, err := Scan(strings.NewReader(typ.Representation()), typ.Name())
			if err != nil {
				t.Fatalf("%q: unexpected error %v", typ.Representation(), err)
			}
			if len(toks) != 2 || toks[0].Type != typ {
				t.Errorf("%q: want single %s, have\n%s", typ.Representation(), typ, Describe(toks))
			}
		})
	}
}

// TestMaximalMunch tests that the longest composed token wins.
func TestMaximalMunch(t *testing.T) {
	cases := map[string]struct {
		text string
		want []*Type
	}{
		"shift-assign":   {">>=", []*Type{ShiftRightEqual}},
		"shift-greater":  {">>>", []*Type{ShiftRight, Greater}},
		"ge-eq":          {">==", []*Type{GreaterEqual, Equal}},
		"inc-plus":       {"+++", []*Type{Increment, Plus}},
		"inc-inc":        {"++++", []*Type{Increment, Increment}},
		"eqeq-eq":        {"===", []*Type{EqualEqual, Equal}},
		"bang-eqeq":      {"!==", []*Type{BangEqual, Equal}},
		"range":          {"1..5", []*Type{Number, Range, Number}},
		"exp-semicolon":  {"1e3;", []*Type{Number, Semicolon}},
		"exp-upper-sign": {"1.5E+2 x", []*Type{Number, Identifier}},
		"range-exp":      {"0..1e2", []*Type{Number, Range, Number}},
		"dot":            {"a.b", []*Type{Identifier, Dot, Identifier}},
		"less-less-eq":   {"<<=", []*Type{ShiftLeftEqual}},
		"spaced":         {"> >=", []*Type{Greater, GreaterEqual}},
		"minus-number":   {"-1", []*Type{Minus, Number}},
		"andand-and":     {"&&&", []*Type{And, Ampersand}},
		"comment-line":   {"a // b c\nd", []*Type{Identifier, Identifier}},
		"comment-nested": {"a /* b /* c */ d */ e", []*Type{Identifier, Identifier}},
		"slash-eq":       {"a /= b", []*Type{Identifier, SlashEqual, Identifier}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			toks, err := Scan(strings.NewReader(c.text), name)
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.text, err)
			}
			want := append(c.want, EOF)
			if len(toks) != len(want) {
				t.Fatalf("%q: want %d tokens, have %d:\n%s", c.text, len(want), len(toks), Describe(toks))
			}
			for i, tok := range toks {
				if tok.Type != want[i] {
					t.Errorf("%q: token %d: want %s, have %s", c.text, i, want[i], tok.Type)
				}
			}
		})
	}
}

func TestLexPositions(t *testing.T) {
	toks, err := Scan(strings.NewReader("a\n  bb /* x\n y */ c\n\"s\""), "pos")
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{1, 1}, {2, 3}, {3, 7}, {4, 1}}
	for i, w := range want {
		if toks[i].Line != w[0] || toks[i].Col != w[1] {
			t.Errorf("token %d %s: want %d:%d, have %d:%d", i, toks[i], w[0], w[1], toks[i].Line, toks[i].Col)
		}
		if toks[i].Label != "pos" {
			t.Errorf("token %d has label %q", i, toks[i].Label)
		}
	}
}

func TestLexErrors(t *testing.T) {
	cases := map[string]string{
		"unclosed-paren":   "f(a",
		"unexpected-close": "a)",
		"mismatched":       "(a]",
		"unclosed-brace":   "{ { }",
		"bad-char":         "a @ b",
		"unterminated":     `"abc`,
		"newline-string":   "\"ab\ncd\"",
		"comment":          "/* a",
		"bad-escape":       `"\q"`,
		"number-ident":     "12ab",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Scan(strings.NewReader(src), name)
			if err == nil {
				t.Fatalf("%q: no error", src)
			}
			var lerr *Error
			if !errors.As(err, &lerr) {
				t.Errorf("%q: error %v is not a lexing error", src, err)
			}
		})
	}
}

// TestLexAngles tests that angle brackets aren't balance-checked.
func TestLexAngles(t *testing.T) {
	if _, err := Scan(strings.NewReader("a < b; c >= d; e > f"), "angles"); err != nil {
		t.Error(err)
	}
}

func BenchmarkScan(b *testing.B) {
	src := strings.Repeat("var x = 0x10 + 1.5e3 >>= (y[2] - \"s\\n\"); // comment\n", 64)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Scan(strings.NewReader(src), "bench")
	}
}
