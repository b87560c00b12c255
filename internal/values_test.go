package internal_test

import (
	"errors"
	"math"
	"testing"

	"github.com/zephyrtronium/hslang/internal"
)

func TestTruthy(t *testing.T) {
	cases := map[string]struct {
		v    internal.Value
		want bool
	}{
		"Null":         {nil, false},
		"False":        {false, false},
		"True":         {true, true},
		"Zero":         {0.0, true},
		"EmptyString":  {"", true},
		"EmptyArray":   {internal.NewArray(), true},
		"BoxedFalse":   {internal.NewExternal(false), false},
		"BoxedPointer": {internal.NewExternal((*int)(nil)), true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := internal.Truthy(c.v); got != c.want {
				t.Errorf("Truthy(%v): want %t, got %t", c.v, c.want, got)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	fn := &internal.Function{}
	cases := map[string]struct {
		a, b internal.Value
		want bool
	}{
		"Numbers":      {1.0, 1.0, true},
		"NumberString": {1.0, "1", false},
		"NullFalse":    {nil, false, false},
		"Nulls":        {nil, nil, true},
		"Arrays":       {internal.NewArray(1.0, "x"), internal.NewArray(1.0, "x"), true},
		"ArrayLengths": {internal.NewArray(1.0), internal.NewArray(1.0, 1.0), false},
		"Ranges":       {&internal.Range{Start: 1, End: 3}, &internal.Range{Start: 1, End: 3}, true},
		"Boxed":        {internal.NewExternal(3), 3.0, true},
		"BoxedDeep":    {internal.NewExternal([]int{1}), internal.NewExternal([]int{1}), true},
		"Identity":     {fn, fn, true},
		"Distinct":     {fn, &internal.Function{}, false},
		"NaN":          {math.NaN(), math.NaN(), false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := internal.Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%v, %v): want %t, got %t", c.a, c.b, c.want, got)
			}
		})
	}
}

// TestEqualCycles tests that comparing self-referential arrays terminates.
func TestEqualCycles(t *testing.T) {
	a, b, c := internal.NewArray(nil, 1.0), internal.NewArray(nil, 1.0), internal.NewArray(nil, 2.0)
	a.Elems[0], b.Elems[0], c.Elems[0] = a, b, c
	cases := map[string]struct {
		a, b internal.Value
		want bool
	}{
		"Self":    {a, a, true},
		"Twins":   {a, b, true},
		"Differ":  {a, c, false},
		"Wrapped": {internal.NewArray(a, 1.0), a, true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := internal.Equal(c.a, c.b); got != c.want {
				t.Errorf("want %t, got %t", c.want, got)
			}
		})
	}
}

func TestNewRange(t *testing.T) {
	cases := map[string]struct {
		start, end float64
		ok         bool
	}{
		"Up":      {1.5, 3, true},
		"Down":    {3, -2, true},
		"Longest": {0, internal.MaxRangeLength - 1, true},
		"TooLong": {0, internal.MaxRangeLength, false},
		"Huge":    {0, 1e19, false},
		"Inf":     {0, math.Inf(1), false},
		"NaN":     {math.NaN(), 1, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := internal.NewRange(c.start, c.end)
			if !c.ok {
				if !errors.Is(err, internal.ErrType) {
					t.Errorf("want ErrType, got %v, %v", r, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r.Start != math.Floor(c.start) || r.Len() < 1 {
				t.Errorf("wrong range %v with length %d", r, r.Len())
			}
		})
	}
}

func TestFromGo(t *testing.T) {
	cases := map[string]struct {
		x    interface{}
		want internal.Value
	}{
		"Int":     {42, 42.0},
		"Uint8":   {uint8(7), 7.0},
		"Float32": {float32(0.5), 0.5},
		"String":  {"s", "s"},
		"Bool":    {true, true},
		"Nil":     {nil, nil},
		"Values":  {[]internal.Value{1.0}, internal.NewArray(1.0)},
		"Error":   {errors.New("oops"), "oops"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := internal.FromGo(c.x); !internal.Equal(got, c.want) {
				t.Errorf("FromGo(%#v): want %v, got %v", c.x, c.want, got)
			}
		})
	}
	if _, ok := internal.FromGo(struct{}{}).(*internal.External); !ok {
		t.Error("struct wasn't boxed")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		1:            "1",
		-2.5:         "-2.5",
		1e21:         "1e+21",
		math.Inf(1):  "inf",
		math.Inf(-1): "-inf",
		0.3:          "0.3",
		123456789:    "123456789",
		1.5e-7:       "1.5e-07",
	}
	for f, want := range cases {
		if got := internal.FormatNumber(f); got != want {
			t.Errorf("FormatNumber(%v): want %q, got %q", f, want, got)
		}
	}
}

func TestRange(t *testing.T) {
	cases := map[string]struct {
		r    internal.Range
		want []float64
	}{
		"Up":     {internal.Range{Start: 1, End: 3}, []float64{1, 2, 3}},
		"Down":   {internal.Range{Start: 3, End: 1}, []float64{3, 2, 1}},
		"Single": {internal.Range{Start: 5, End: 5}, []float64{5}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if c.r.Len() != len(c.want) {
				t.Fatalf("want length %d, got %d", len(c.want), c.r.Len())
			}
			for i, w := range c.want {
				if got := c.r.At(i); got != w {
					t.Errorf("element %d: want %v, got %v", i, w, got)
				}
			}
		})
	}
}
