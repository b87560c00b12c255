package internal

import "fmt"

// NumberArg returns the nth argument to a native function as a number. Boxed
// host numbers are unwrapped. If the argument is not a number, the error
// wraps ErrType.
func NumberArg(args []Value, n int) (float64, error) {
	if n >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrArity, n)
	}
	if x, ok := Unwrap(args[n]).(float64); ok {
		return x, nil
	}
	return 0, fmt.Errorf("%w: argument %d must be number, not %s", ErrType, n, TypeName(args[n]))
}

// StringArg returns the nth argument to a native function as a string.
func StringArg(args []Value, n int) (string, error) {
	if n >= len(args) {
		return "", fmt.Errorf("%w: missing argument %d", ErrArity, n)
	}
	if s, ok := Unwrap(args[n]).(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: argument %d must be string, not %s", ErrType, n, TypeName(args[n]))
}

// OptionalStringArg is like StringArg, but returns def if there are fewer
// than n+1 arguments or the nth is null.
func OptionalStringArg(args []Value, n int, def string) (string, error) {
	if n >= len(args) || args[n] == nil {
		return def, nil
	}
	return StringArg(args, n)
}
