package hsrange_test

import (
	"errors"
	"testing"

	"github.com/zephyrtronium/hslang"
	hsrange "github.com/zephyrtronium/hslang/addons/range"
	"github.com/zephyrtronium/hslang/testutils"
)

func TestNewSequence(t *testing.T) {
	cases := map[string]struct {
		start, stop, step float64
		want              []float64
	}{
		"Up":      {1, 3, 1, []float64{1, 2, 3}},
		"UpHalf":  {0, 1, 0.5, []float64{0, 0.5, 1}},
		"Down":    {3, 0, -1.5, []float64{3, 1.5, 0}},
		"Short":   {0, 2.5, 1, []float64{0, 1, 2}},
		"Empty":   {1, 0, 1, nil},
		"Single":  {4, 4, 2, []float64{4}},
		"Reverse": {0, 5, -1, nil},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := hsrange.NewSequence(c.start, c.stop, c.step)
			if err != nil {
				t.Fatal(err)
			}
			if s.Len() != len(c.want) {
				t.Fatalf("want length %d, got %d", len(c.want), s.Len())
			}
			for i, w := range c.want {
				if got, ok := s.At(int64(i)); !ok || got != w {
					t.Errorf("term %d: want %v, got %v (%t)", i, w, got, ok)
				}
				if !s.Contains(w) {
					t.Errorf("sequence doesn't contain its term %v", w)
				}
			}
			if _, ok := s.At(int64(len(c.want))); ok {
				t.Error("term past the end is in bounds")
			}
		})
	}
}

func TestSequenceLength(t *testing.T) {
	cases := map[string][3]float64{
		"ZeroStep": {0, 1, 0},
		"Huge":     {0, 1e300, 1},
		"NaN":      {0, 0, 0 / zero},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := hsrange.NewSequence(c[0], c[1], c[2]); !errors.Is(err, hsrange.ErrLength) {
				t.Errorf("want ErrLength, got %v", err)
			}
		})
	}
}

var zero float64

func TestModule(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"Foreach": {
			Source: `module range; foreach (x in sequence(0, 1, 0.25)) emit(x);`,
			Pass:   testutils.PassEmitted(0.0, 0.25, 0.5, 0.75, 1.0),
		},
		"To":          {Source: `module range; to(1, 3);`, Pass: testutils.PassEqual(&hslang.Range{Start: 1, End: 3})},
		"At":          {Source: `module range; at(sequence(10, 0, -2), 2);`, Pass: testutils.PassEqual(6.0)},
		"AtBounds":    {Source: `module range; at(sequence(10, 0, -2), 6);`, Pass: testutils.PassFailure(nil)},
		"Contains":    {Source: `module range; contains(sequence(0, 9, 3), 6);`, Pass: testutils.PassEqual(true)},
		"NotContains": {Source: `module range; contains(sequence(0, 9, 3), 7);`, Pass: testutils.PassEqual(false)},
		"Length":      {Source: `module range; length(sequence(0, 9, 3));`, Pass: testutils.PassEqual(4.0)},
		"Fields":      {Source: `module range; sequence(0, 9, 3).Last;`, Pass: testutils.PassEqual(3.0)},
		"NotSequence": {Source: `module range; length([1]);`, Pass: testutils.PassFailure(hslang.ErrType)},
		"ToTooLong":   {Source: `module range; to(0, 1e20);`, Pass: testutils.PassFailure(hslang.ErrType)},
		"TooLong":     {Source: `module range; sequence(0, 1, 0);`, Pass: testutils.PassFailure(hsrange.ErrLength)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			vm := testutils.NewVM()
			vm.Modules.Register(hsrange.Module)
			r, err := vm.DoString(c.Source, "TestModule/"+name)
			if !c.Pass(vm, r, err) {
				t.Errorf("%q produced wrong result: %v, %v", c.Source, r, err)
			}
		})
	}
}
