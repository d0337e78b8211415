package dispatch

import "errors"

var (
	// ErrUnknownCommand indicates a handler registered for a name outside the contract set.
	ErrUnknownCommand = errors.New("dispatch: unknown command")
	// ErrMissingHandler indicates a contract without handler at weave time.
	ErrMissingHandler = errors.New("dispatch: missing handler")
	// ErrNilHandler indicates a nil HandlerFunc.
	ErrNilHandler = errors.New("dispatch: nil handler")
	// ErrWoven indicates the handler table is frozen.
	ErrWoven = errors.New("dispatch: already woven")
	// ErrEncodingMismatch indicates the contract set was built for another encoding.
	ErrEncodingMismatch = errors.New("dispatch: contract set uses a different encoding")
	// ErrReturnType indicates a handler returned a value of the wrong type.
	ErrReturnType = errors.New("dispatch: unexpected return type")
)
