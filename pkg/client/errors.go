package client

import (
	"errors"
	"fmt"
)

// ErrMissingReturn indicates a response without the declared return value.
var ErrMissingReturn = errors.New("client: missing return value")

// RemoteError is an ErrorResponse sent by the device.
type RemoteError struct {
	Msg string
}

// Error implements error.
func (e *RemoteError) Error() string {
	return "device error: " + e.Msg
}

// UnexpectedResponseError reports a response to another request.
type UnexpectedResponseError struct {
	Expected string
	Got      string
}

// Error implements error.
func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response %q, expecting %q", e.Got, e.Expected)
}
