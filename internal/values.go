package internal

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

// Value is any hslang value. The dynamic type is always one of nil, bool,
// float64, string, *Array, *Range, *Function, *Class, *Instance,
// *NativeFunction, or *External.
type Value = interface{}

// Array is a mutable sequence of values.
type Array struct {
	Elems []Value
}

// NewArray creates an array holding elems.
func NewArray(elems ...Value) *Array {
	return &Array{Elems: elems}
}

// Range is an inclusive sequence of numbers stepping by one toward End.
type Range struct {
	Start, End float64
}

// MaxRangeLength is the largest number of values a range may hold.
const MaxRangeLength = math.MaxInt32

// NewRange creates a range from start to end, both rounded down. It returns
// an error wrapping ErrType if either bound is not finite or if the range
// would hold more than MaxRangeLength values.
func NewRange(start, end float64) (*Range, error) {
	start, end = math.Floor(start), math.Floor(end)
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return nil, fmt.Errorf("%w: range bounds %s..%s must be finite", ErrType, FormatNumber(start), FormatNumber(end))
	}
	if math.Abs(end-start) >= MaxRangeLength {
		return nil, fmt.Errorf("%w: range %s..%s is longer than %d", ErrType, FormatNumber(start), FormatNumber(end), MaxRangeLength)
	}
	return &Range{Start: start, End: end}, nil
}

// Len returns the number of values in the range.
func (r *Range) Len() int {
	return int(math.Abs(math.Floor(r.End)-math.Floor(r.Start))) + 1
}

// At returns the ith value in the range.
func (r *Range) At(i int) float64 {
	if r.End < r.Start {
		return r.Start - float64(i)
	}
	return r.Start + float64(i)
}

// Iterable is implemented by host values which can be the subject of a
// foreach loop.
type Iterable interface {
	Elements() []Value
}

// External is a boxed host value. Exported fields of a boxed struct are
// accessible as properties.
type External struct {
	v interface{}
}

// NewExternal boxes a host value.
func NewExternal(v interface{}) *External {
	return &External{v: v}
}

// Unwrap returns the boxed host value.
func (e *External) Unwrap() interface{} {
	return e.v
}

// FromGo converts a host value to an hslang value. Booleans, numbers, and
// strings of any Go type become their hslang counterparts, slices of Value
// become arrays, values which are already hslang values are returned as-is,
// and anything else is boxed in an *External.
func FromGo(x interface{}) Value {
	switch x := x.(type) {
	case nil, bool, float64, string, *Array, *Range, *Function, *Class, *Instance, *NativeFunction, *External:
		return x
	case []Value:
		return NewArray(x...)
	case error:
		return x.Error()
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}
	return NewExternal(x)
}

// Unwrap removes the boxing from a value. Boxed scalars become the
// corresponding hslang value; other boxed values are returned still boxed,
// since their host representation is what gives them meaning.
func Unwrap(v Value) Value {
	e, ok := v.(*External)
	if !ok {
		return v
	}
	switch r := FromGo(e.v).(type) {
	case *External:
		return e
	default:
		return r
	}
}

// Truthy reports whether a value counts as true in a condition. Only null and
// false are falsy.
func Truthy(v Value) bool {
	switch v := Unwrap(v).(type) {
	case nil:
		return false
	case bool:
		return v
	}
	return true
}

// Equal reports whether two values are structurally equal. Numbers, strings,
// and booleans compare by value; arrays and ranges compare elementwise;
// boxed host values compare deeply; everything else compares by identity.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

// arrayPair is a pair of arrays under comparison.
type arrayPair struct {
	a, b *Array
}

// equal compares values. Pairs of arrays already being compared further up
// are taken as equal, so self-referential arrays terminate.
func equal(a, b Value, seen map[arrayPair]bool) bool {
	a, b = Unwrap(a), Unwrap(b)
	switch a := a.(type) {
	case nil:
		return b == nil
	case bool, float64, string:
		return a == b
	case *Array:
		b, ok := b.(*Array)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		if a == b {
			return true
		}
		k := arrayPair{a, b}
		if seen[k] {
			return true
		}
		if seen == nil {
			seen = make(map[arrayPair]bool)
		}
		seen[k] = true
		for i := range a.Elems {
			if !equal(a.Elems[i], b.Elems[i], seen) {
				return false
			}
		}
		return true
	case *Range:
		b, ok := b.(*Range)
		return ok && *a == *b
	case *External:
		b, ok := b.(*External)
		return ok && reflect.DeepEqual(a.v, b.v)
	}
	return a == b
}

// TypeName returns the name of a value's type as shown in error messages.
func TypeName(v Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Array:
		return "array"
	case *Range:
		return "range"
	case *Function:
		return "function"
	case *Class:
		return "class"
	case *Instance:
		return v.Class.Name
	case *NativeFunction:
		return "native function"
	case *External:
		return fmt.Sprintf("external %T", v.v)
	}
	return fmt.Sprintf("invalid %T", v)
}

// Stringify formats a value the way print shows it.
func Stringify(v Value) string {
	var b strings.Builder
	stringify(&b, v, 0)
	return b.String()
}

func stringify(b *strings.Builder, v Value, depth int) {
	switch v := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case float64:
		b.WriteString(FormatNumber(v))
	case string:
		if depth > 0 {
			b.WriteString(strconv.Quote(v))
		} else {
			b.WriteString(v)
		}
	case *Array:
		if depth > 8 {
			b.WriteString("[...]")
			return
		}
		b.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			stringify(b, e, depth+1)
		}
		b.WriteByte(']')
	case *Range:
		b.WriteString(FormatNumber(v.Start))
		b.WriteString("..")
		b.WriteString(FormatNumber(v.End))
	case *Function:
		fmt.Fprintf(b, "<fun %s>", v.Name())
	case *Class:
		fmt.Fprintf(b, "<class %s>", v.Name)
	case *Instance:
		fmt.Fprintf(b, "<%s instance>", v.Class.Name)
	case *NativeFunction:
		fmt.Fprintf(b, "<native fun %s.%s>", v.Module, v.Name)
	case *External:
		fmt.Fprint(b, v.v)
	default:
		fmt.Fprintf(b, "<invalid %T>", v)
	}
}

// FormatNumber formats a number without a trailing fraction when it is
// integral.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// iterate produces the elements of an iterable value. ok is false if v is
// not iterable. Arrays are iterated live, so appending during a loop extends
// it.
func iterate(v Value) (next func() (Value, bool), ok bool) {
	switch v := v.(type) {
	case *Array:
		i := 0
		return func() (Value, bool) {
			if i >= len(v.Elems) {
				return nil, false
			}
			i++
			return v.Elems[i-1], true
		}, true
	case *Range:
		i, n := 0, v.Len()
		return func() (Value, bool) {
			if i >= n {
				return nil, false
			}
			i++
			return v.At(i - 1), true
		}, true
	case string:
		rs := []rune(v)
		i := 0
		return func() (Value, bool) {
			if i >= len(rs) {
				return nil, false
			}
			i++
			return string(rs[i-1]), true
		}, true
	case *External:
		return iterateExternal(v.v)
	}
	return nil, false
}

func iterateExternal(x interface{}) (func() (Value, bool), bool) {
	var elems []Value
	if it, ok := x.(Iterable); ok {
		elems = it.Elements()
	} else {
		rv := reflect.ValueOf(x)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			elems = make([]Value, rv.Len())
			for i := range elems {
				elems[i] = FromGo(rv.Index(i).Interface())
			}
		case reflect.Map:
			keys := rv.MapKeys()
			sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
			elems = make([]Value, len(keys))
			for i, k := range keys {
				elems[i] = FromGo(k.Interface())
			}
		default:
			return nil, false
		}
	}
	return iterate(NewArray(elems...))
}

// lessKey orders map keys for iteration.
func lessKey(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.String:
		return a.String() < b.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	}
	return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
}

// idcounter is the global counter for class IDs. All accesses to this must be
// atomic.
var idcounter uintptr

// nextID increments the ID counter and returns its value as a unique ID.
func nextID() uintptr {
	return atomic.AddUintptr(&idcounter, 1)
}
