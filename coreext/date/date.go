// Package date provides the date native module. Dates are represented as
// numbers of seconds since 1970-01-01 00:00:00 UTC.
package date

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zephyrtronium/hslang"

	"gitlab.com/variadico/lctime"
)

// DefaultFormat is the format used by format when none is given.
const DefaultFormat = "%Y-%m-%d %H:%M:%S %Z"

// DefaultDurationFormat is the format used by formatDuration when none is
// given.
const DefaultDurationFormat = "%Y years %d days %H:%M:%S"

// Module is the date native module.
var Module = &hslang.FuncModule{
	ModuleName: "date",
	Funcs: []hslang.NativeFunctionDescriptor{
		{Name: "now", Arity: 0, Fn: now},
		{Name: "clock", Arity: 0, Fn: clock},
		{Name: "format", Arity: hslang.Variadic, Fn: format},
		{Name: "year", Arity: hslang.Variadic, Fn: part(func(t time.Time) int { return t.Year() })},
		{Name: "month", Arity: hslang.Variadic, Fn: part(func(t time.Time) int { return int(t.Month()) })},
		{Name: "day", Arity: hslang.Variadic, Fn: part(time.Time.Day)},
		{Name: "hour", Arity: hslang.Variadic, Fn: part(time.Time.Hour)},
		{Name: "minute", Arity: hslang.Variadic, Fn: part(time.Time.Minute)},
		{Name: "second", Arity: hslang.Variadic, Fn: part(time.Time.Second)},
		{Name: "weekday", Arity: hslang.Variadic, Fn: part(func(t time.Time) int { return int(t.Weekday()) })},
		{Name: "since", Arity: 1, Fn: since},
		{Name: "ago", Arity: 1, Fn: ago},
		{Name: "formatDuration", Arity: hslang.Variadic, Fn: formatDuration},
		{Name: "gmtOffset", Arity: hslang.Variadic, Fn: part(func(t time.Time) int { _, off := t.Zone(); return off })},
	},
}

func init() {
	hslang.Register(Module)
}

// FromNumber converts seconds since the epoch to a time.Time.
func FromNumber(x float64) time.Time {
	s, f := math.Modf(x)
	return time.Unix(int64(s), int64(f*1e9))
}

// ToNumber converts a time.Time to seconds since the epoch.
func ToNumber(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Format formats t using C strftime directives. See
// https://godoc.org/github.com/variadico/lctime for the supported list.
func Format(layout string, t time.Time) string {
	return lctime.Strftime(layout, t)
}

// timeArgs interprets the arguments (date, zone) shared by the date
// functions. The zone is an IANA location name, "UTC", or "Local"; it
// defaults to the local zone.
func timeArgs(args []hslang.Value, date, zone int) (time.Time, error) {
	x, err := hslang.NumberArg(args, date)
	if err != nil {
		return time.Time{}, err
	}
	name, err := hslang.OptionalStringArg(args, zone, "Local")
	if err != nil {
		return time.Time{}, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Time{}, err
	}
	return FromNumber(x).In(loc), nil
}

// now returns the current time.
func now(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	return ToNumber(time.Now()), nil
}

// clock returns the number of seconds since the VM was created.
func clock(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	return time.Since(vm.StartTime).Seconds(), nil
}

// format(date, layout, zone) formats a date. Both layout and zone are
// optional.
func format(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	t, err := timeArgs(args, 0, 2)
	if err != nil {
		return nil, err
	}
	layout, err := hslang.OptionalStringArg(args, 1, DefaultFormat)
	if err != nil {
		return nil, err
	}
	return Format(layout, t), nil
}

// part creates a function of (date, zone) which extracts one component of
// the date.
func part(f func(time.Time) int) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		t, err := timeArgs(args, 0, 1)
		if err != nil {
			return nil, err
		}
		return f(t), nil
	}
}

// since returns the number of seconds elapsed since a date.
func since(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	x, err := hslang.NumberArg(args, 0)
	if err != nil {
		return nil, err
	}
	return time.Since(FromNumber(x)).Seconds(), nil
}

// ago describes a date relative to now, like "3 hours ago".
func ago(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	x, err := hslang.NumberArg(args, 0)
	if err != nil {
		return nil, err
	}
	return humanize.Time(FromNumber(x)), nil
}

// formatDuration(seconds, layout) formats a duration.
func formatDuration(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	x, err := hslang.NumberArg(args, 0)
	if err != nil {
		return nil, err
	}
	layout, err := hslang.OptionalStringArg(args, 1, DefaultDurationFormat)
	if err != nil {
		return nil, err
	}
	return FormatDuration(layout, time.Duration(x*float64(time.Second))), nil
}

// FormatDuration formats a duration. The layout may use these directives:
//
//	%Y - Years, with a year defined as 60*60*24*365 seconds.
//	%y - Four digit years.
//	%d - Days, with a day defined as 60*60*24 seconds.
//	%H - Hours.
//	%M - Minutes.
//	%S - Seconds, with six-digit fraction.
//
// Years and days never account for leap years or leap seconds.
func FormatDuration(layout string, d time.Duration) string {
	const (
		year = 365 * 24 * time.Hour
		day  = 24 * time.Hour
	)
	rep := strings.NewReplacer(
		"%Y", fmt.Sprintf("%d", d/year),
		"%y", fmt.Sprintf("%04d", d/year),
		"%d", fmt.Sprintf("%02d", d%year/day),
		"%H", fmt.Sprintf("%02d", d%day/time.Hour),
		"%M", fmt.Sprintf("%02d", d%time.Hour/time.Minute),
		"%S", fmt.Sprintf("%09.6f", float64(d%time.Minute)/float64(time.Second)))
	return rep.Replace(layout)
}
