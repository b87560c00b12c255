// Package text provides the text native module: locale-aware case mapping,
// width folding, and Unicode normalization of strings.
package text

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/zephyrtronium/hslang"
)

// Module is the text native module.
var Module = &hslang.FuncModule{
	ModuleName: "text",
	Funcs: []hslang.NativeFunctionDescriptor{
		{Name: "upper", Arity: hslang.Variadic, Fn: caser(cases.Upper)},
		{Name: "lower", Arity: hslang.Variadic, Fn: caser(cases.Lower)},
		{Name: "title", Arity: hslang.Variadic, Fn: caser(cases.Title)},
		{Name: "fold", Arity: 1, Fn: transform(fold)},
		{Name: "narrow", Arity: 1, Fn: transform(width.Narrow.String)},
		{Name: "widen", Arity: 1, Fn: transform(width.Widen.String)},
		{Name: "normalize", Arity: hslang.Variadic, Fn: normalize},
		{Name: "length", Arity: 1, Fn: length},
		{Name: "split", Arity: 2, Fn: split},
	},
}

func init() {
	hslang.Register(Module)
}

// caser creates a function of (s, lang) which maps the case of s according
// to the rules of the BCP 47 language tag lang, or the root locale if lang
// is omitted.
func caser(mk func(language.Tag, ...cases.Option) cases.Caser) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		s, err := hslang.StringArg(args, 0)
		if err != nil {
			return nil, err
		}
		tag := language.Und
		if name, err := hslang.OptionalStringArg(args, 1, ""); err != nil {
			return nil, err
		} else if name != "" {
			tag, err = language.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("bad language tag %q: %w", name, err)
			}
		}
		// Casers are stateful, so each call gets its own.
		return mk(tag).String(s), nil
	}
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// transform creates a function of one string argument.
func transform(f func(string) string) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		s, err := hslang.StringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return f(s), nil
	}
}

// normalize(s, form) converts s to a Unicode normalization form, one of NFC,
// NFD, NFKC, or NFKD. The default is NFC.
func normalize(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	s, err := hslang.StringArg(args, 0)
	if err != nil {
		return nil, err
	}
	name, err := hslang.OptionalStringArg(args, 1, "NFC")
	if err != nil {
		return nil, err
	}
	var f norm.Form
	switch strings.ToUpper(name) {
	case "NFC":
		f = norm.NFC
	case "NFD":
		f = norm.NFD
	case "NFKC":
		f = norm.NFKC
	case "NFKD":
		f = norm.NFKD
	default:
		return nil, fmt.Errorf("unknown normalization form %q", name)
	}
	return f.String(s), nil
}

// length returns the number of code points in a string.
func length(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	s, err := hslang.StringArg(args, 0)
	if err != nil {
		return nil, err
	}
	return utf8.RuneCountInString(s), nil
}

// split(s, sep) splits a string into an array.
func split(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	s, err := hslang.StringArg(args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := hslang.StringArg(args, 1)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	r := make([]hslang.Value, len(parts))
	for i, p := range parts {
		r[i] = p
	}
	return r, nil
}
