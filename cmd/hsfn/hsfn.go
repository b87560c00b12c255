// Command hsfn lists the functions in Go packages which can be used as
// hslang native functions, formatted as entries of a FuncModule's Funcs.
//
// Usage:
//
//	hsfn [-match regexp] [-ignore regexp] package ...
//
// When -match is given, the matched prefix is removed from each function's
// name to form the hslang name.
package main

import (
	"flag"
	"fmt"
	"go/token"
	"go/types"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

func main() {
	var match, ignore string
	var hslang string
	flag.StringVar(&match, "match", ".", "include only functions matching this regular expression")
	flag.StringVar(&ignore, "ignore", "$^", "exclude functions matching this regular expression")
	flag.StringVar(&hslang, "hslang", "github.com/zephyrtronium/hslang", "import path for package hslang source code")
	flag.Parse()
	mre, err := regexp.Compile(match)
	if err != nil {
		fail("error compiling match:", err)
	}
	ire, err := regexp.Compile(ignore)
	if err != nil {
		fail("error compiling ignore:", err)
	}

	fset := token.NewFileSet()
	config := packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedImports, Fset: fset}
	pkgs, err := packages.Load(&config, append([]string{hslang}, flag.Args()...)...)
	if err != nil {
		fail("error loading packages:", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}
	fn, pkgs := getFn(pkgs)
	for _, line := range entries(pkgs, fn, mre, ire) {
		fmt.Println(line)
	}
}

func fail(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

// getFn finds the Fn type in the first package.
func getFn(pkgs []*packages.Package) (types.Type, []*packages.Package) {
	pkg := pkgs[0].Types
	r := pkg.Scope().Lookup("Fn")
	if r == nil {
		fail(pkg.Name(), "has no definition of Fn")
	}
	t, ok := r.(*types.TypeName)
	if !ok {
		fail(pkg.Name(), "has incorrect definition of Fn:", r)
	}
	fn := t.Type().Underlying()
	return fn, pkgs[1:]
}

// entries formats the matching functions of each package.
func entries(pkgs []*packages.Package, fn types.Type, mre, ire *regexp.Regexp) []string {
	results := []string{}
	for _, pkg := range pkgs {
		for _, name := range find(pkg.Types.Scope(), fn, mre, ire) {
			results = append(results, fmt.Sprintf("\t\t{Name: %q, Arity: hslang.Variadic, Fn: %s.%s},", trimMatch(name, mre), pkg.Name, name))
		}
	}
	sort.Strings(results)
	return results
}

// find lists the functions in a scope assignable to fn.
func find(pkg *types.Scope, fn types.Type, mre, ire *regexp.Regexp) []string {
	var r []string
	for _, name := range pkg.Names() {
		if !mre.MatchString(name) || ire.MatchString(name) {
			continue
		}
		f, ok := pkg.Lookup(name).(*types.Func)
		if ok && types.AssignableTo(f.Type(), fn) {
			r = append(r, name)
		}
	}
	return r
}

func trimMatch(name string, mre *regexp.Regexp) string {
	if mre.String() != "." {
		k := mre.FindStringIndex(name)
		name = name[k[1]:]
	}
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
