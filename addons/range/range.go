// Package hsrange provides the range native module, which creates
// arithmetic sequences with arbitrary steps. It is built into cmd/hs when
// plugins are unavailable and is otherwise loadable as a plugin from
// addons/range/plugin.
package hsrange

import (
	"errors"
	"fmt"
	"math"

	"github.com/zephyrtronium/hslang"
)

// MaxLength is the largest number of terms a sequence may have.
const MaxLength = 1 << 24

// ErrLength is returned when a sequence would have no end or more than
// MaxLength terms.
var ErrLength = errors.New("sequence too long")

// Sequence yields the terms of a linear sequence.
type Sequence struct {
	Start, Step float64
	// Last is the index of the final term.
	Last int64
}

// NewSequence creates a sequence from start toward stop in increments of
// step. If the sequence would not end, or would be longer than MaxLength, the
// error wraps ErrLength.
func NewSequence(start, stop, step float64) (*Sequence, error) {
	if step == 0 {
		return nil, fmt.Errorf("%w: step is zero", ErrLength)
	}
	var v float64
	if step > 0 {
		v = math.Floor((stop - start) / step)
	} else {
		v = math.Floor((start - stop) / -step)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) || v >= MaxLength {
		return nil, fmt.Errorf("%w: from %v to %v by %v", ErrLength, start, stop, step)
	}
	if v < 0 {
		// Empty sequence.
		v = -1
	}
	return &Sequence{Start: start, Step: step, Last: int64(v)}, nil
}

// Len returns the number of terms in the sequence.
func (s *Sequence) Len() int {
	return int(s.Last + 1)
}

// At returns the kth term of the sequence.
func (s *Sequence) At(k int64) (float64, bool) {
	if k < 0 || k > s.Last {
		return 0, false
	}
	return s.Start + float64(k)*s.Step, true
}

// Contains returns true if v occurs exactly in the sequence.
func (s *Sequence) Contains(v float64) bool {
	k := (v - s.Start) / s.Step
	if k < 0 || k > float64(s.Last) {
		return false
	}
	return k == math.Trunc(k)
}

// Elements returns the terms of the sequence, allowing foreach over it.
func (s *Sequence) Elements() []hslang.Value {
	r := make([]hslang.Value, s.Len())
	for i := range r {
		r[i] = s.Start + float64(i)*s.Step
	}
	return r
}

// Module is the range native module.
var Module = &hslang.FuncModule{
	ModuleName: "range",
	Funcs: []hslang.NativeFunctionDescriptor{
		{Name: "sequence", Arity: 3, Fn: sequence},
		{Name: "to", Arity: 2, Fn: to},
		{Name: "at", Arity: 2, Fn: at},
		{Name: "contains", Arity: 2, Fn: contains},
		{Name: "length", Arity: 1, Fn: length},
	},
}

// SequenceArg returns the nth argument as a sequence.
func SequenceArg(args []hslang.Value, n int) (*Sequence, error) {
	if e, ok := args[n].(*hslang.External); ok {
		if s, ok := e.Unwrap().(*Sequence); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: argument %d must be sequence, not %s", hslang.ErrType, n, hslang.TypeName(args[n]))
}

// sequence(start, stop, step) creates a sequence.
func sequence(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	var x [3]float64
	for i := range x {
		var err error
		if x[i], err = hslang.NumberArg(args, i); err != nil {
			return nil, err
		}
	}
	s, err := NewSequence(x[0], x[1], x[2])
	if err != nil {
		return nil, err
	}
	return hslang.NewExternal(s), nil
}

// to(start, end) creates an inclusive range with step one.
func to(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	start, err := hslang.NumberArg(args, 0)
	if err != nil {
		return nil, err
	}
	end, err := hslang.NumberArg(args, 1)
	if err != nil {
		return nil, err
	}
	r, err := hslang.NewRange(start, end)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// at(seq, k) returns the kth term of a sequence.
func at(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	s, err := SequenceArg(args, 0)
	if err != nil {
		return nil, err
	}
	k, err := hslang.NumberArg(args, 1)
	if err != nil {
		return nil, err
	}
	v, ok := s.At(int64(k))
	if !ok {
		return nil, fmt.Errorf("index %v out of bounds", k)
	}
	return v, nil
}

// contains(seq, v) tests whether v is a term of a sequence.
func contains(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	s, err := SequenceArg(args, 0)
	if err != nil {
		return nil, err
	}
	v, err := hslang.NumberArg(args, 1)
	if err != nil {
		return nil, err
	}
	return s.Contains(v), nil
}

// length(seq) returns the number of terms in a sequence.
func length(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	s, err := SequenceArg(args, 0)
	if err != nil {
		return nil, err
	}
	return s.Len(), nil
}
