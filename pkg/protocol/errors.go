package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOpener indicates the line has no argument opener.
	ErrNoOpener = errors.New("protocol: missing argument opener")
	// ErrNoCloser indicates the line has no argument closer.
	ErrNoCloser = errors.New("protocol: missing argument closer")
	// ErrCloserFirst indicates the first closer appears before the first opener.
	ErrCloserFirst = errors.New("protocol: argument closer before opener")
	// ErrEmptyName indicates nothing precedes the argument opener.
	ErrEmptyName = errors.New("protocol: empty name")
	// ErrTooManyArgs indicates more than MaxArgs arguments.
	ErrTooManyArgs = errors.New("protocol: too many arguments")

	// ErrArgNotFound indicates the requested argument key is absent.
	ErrArgNotFound = errors.New("protocol: argument not found")
	// ErrArgInvalid indicates the argument text can't be converted to the requested type.
	ErrArgInvalid = errors.New("protocol: invalid argument value")
	// ErrUnknownType indicates a type tag outside Int, Float, Double and String.
	ErrUnknownType = errors.New("protocol: unknown type")

	// ErrInvalidEncoding indicates an empty or clashing delimiter.
	ErrInvalidEncoding = errors.New("protocol: invalid encoding")
	// ErrAmbiguousEncoding indicates the argument separator and the
	// key/value separator can't be told apart.
	ErrAmbiguousEncoding = errors.New("protocol: argument separator overlaps key/value separator")
)

// MalformedError is returned when a line can't be decoded into a call.
type MalformedError struct {
	Line   string
	Reason error
}

// Error implements error.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v: %q", e.Reason, e.Line)
}

// Unwrap returns the reason.
func (e *MalformedError) Unwrap() error {
	return e.Reason
}

// ArgError reports a failed typed argument extraction.
type ArgError struct {
	Key   string
	Value string
	Err   error
}

// Error implements error.
func (e *ArgError) Error() string {
	if errors.Is(e.Err, ErrArgNotFound) {
		return fmt.Sprintf("argument %q not found", e.Key)
	}
	return fmt.Sprintf("argument %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *ArgError) Unwrap() error {
	return e.Err
}
