package text_test

import (
	"testing"

	"github.com/zephyrtronium/hslang"
	_ "github.com/zephyrtronium/hslang/coreext/text" // side effects
	"github.com/zephyrtronium/hslang/testutils"
)

func TestText(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"Upper":        {Source: `module text; upper("abc");`, Pass: testutils.PassEqual("ABC")},
		"UpperTurkish": {Source: `module text; upper("i", "tr");`, Pass: testutils.PassEqual("İ")},
		"Lower":        {Source: `module text; lower("ÀB");`, Pass: testutils.PassEqual("àb")},
		"Title":        {Source: `module text; title("hello world");`, Pass: testutils.PassEqual("Hello World")},
		"TitleDutch":   {Source: `module text; title("ijssel", "nl");`, Pass: testutils.PassEqual("IJssel")},
		"BadTag":       {Source: `module text; upper("a", "not a tag!");`, Pass: testutils.PassFailure(nil)},
		"Fold":         {Source: `module text; fold("Straße") == fold("STRASSE");`, Pass: testutils.PassEqual(true)},
		"Narrow":       {Source: `module text; narrow("ＡＢＣ１");`, Pass: testutils.PassEqual("ABC1")},
		"Widen":        {Source: `module text; widen("ab");`, Pass: testutils.PassEqual("ａｂ")},
		"NormalizeNFC": {Source: "module text; normalize(\"e\u0301\");", Pass: testutils.PassEqual("\u00e9")},
		"NormalizeNFD": {Source: "module text; normalize(\"\u00e9\", \"nfd\");", Pass: testutils.PassEqual("e\u0301")},
		"NormalizeBad": {Source: `module text; normalize("a", "NFX");`, Pass: testutils.PassFailure(nil)},
		"Length":       {Source: `module text; length("héllo");`, Pass: testutils.PassEqual(5.0)},
		"Split":        {Source: `module text; split("a,b,,c", ",");`, Pass: testutils.PassEqual(hslang.NewArray("a", "b", "", "c"))},
		"NotString":    {Source: `module text; upper(1);`, Pass: testutils.PassFailure(hslang.ErrType)},
		"SplitSepType": {Source: `module text; split("a", 1);`, Pass: testutils.PassFailure(hslang.ErrType)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc("TestText/"+name))
	}
}
