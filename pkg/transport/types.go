package transport

import (
	"context"
	"errors"
)

var (
	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport: closed")
	// ErrLineTooLong indicates an incoming line exceeded the length limit.
	ErrLineTooLong = errors.New("transport: line too long")
)

// LineTransport carries lines in both directions.
type LineTransport interface {
	// Available reports, without blocking, that ReadLine won't block:
	// either a line is pending or the transport is closed.
	Available() bool
	// ReadLine returns the next line without its terminator.
	// It returns io.EOF or the closing error once the transport is closed.
	ReadLine(ctx context.Context) (string, error)
	// WriteLine writes the bytes verbatim, the terminator is expected to
	// be already in place.
	WriteLine(line []byte) error
}
