package path_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zephyrtronium/hslang"
	_ "github.com/zephyrtronium/hslang/coreext/path" // side effects
	"github.com/zephyrtronium/hslang/testutils"
)

func TestPath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]testutils.SourceTestCase{
		"Absolute":    {Source: `module path; absolute("x/y");`, Pass: testutils.PassEqual(filepath.ToSlash(filepath.Join(wd, "x", "y")))},
		"IsAbsolute":  {Source: `module path; isPathAbsolute(absolute("x"));`, Pass: testutils.PassEqual(true)},
		"NotAbsolute": {Source: `module path; isPathAbsolute("x/y");`, Pass: testutils.PassEqual(false)},
		"Base":        {Source: `module path; base("a/b/c.hs");`, Pass: testutils.PassEqual("c.hs")},
		"Dir":         {Source: `module path; dir("a/b/c.hs");`, Pass: testutils.PassEqual("a/b")},
		"Ext":         {Source: `module path; ext("a/b/c.hs");`, Pass: testutils.PassEqual(".hs")},
		"Clean":       {Source: `module path; clean("a/./b/../c");`, Pass: testutils.PassEqual("a/c")},
		"Join":        {Source: `module path; join("a", "b/", "c");`, Pass: testutils.PassEqual("a/b/c")},
		"JoinNone":    {Source: `module path; join();`, Pass: testutils.PassEqual("")},
		"JoinType":    {Source: `module path; join("a", 1);`, Pass: testutils.PassFailure(hslang.ErrType)},
		"Separator":   {Source: `module path; separator();`, Pass: testutils.PassEqual(string(filepath.Separator))},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc("TestPath/"+name))
	}
}
