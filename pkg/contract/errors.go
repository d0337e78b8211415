package contract

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName indicates a request name built twice in the same set.
	ErrDuplicateName = errors.New("contract: duplicate command name")
	// ErrTooManyArgs indicates more than protocol.MaxArgs arguments.
	ErrTooManyArgs = errors.New("contract: too many arguments")
	// ErrInvalidType indicates an argument without a value type.
	ErrInvalidType = errors.New("contract: invalid type")
	// ErrInvalidName indicates a command, argument or return name that isn't an identifier.
	ErrInvalidName = errors.New("contract: invalid name")
	// ErrDuplicateArg indicates two arguments with the same name in one command.
	ErrDuplicateArg = errors.New("contract: duplicate argument")
	// ErrReservedName indicates a command name taken by a built-in command.
	ErrReservedName = errors.New("contract: reserved command name")
	// ErrInvalidBaud indicates a baud rate outside BaudRates.
	ErrInvalidBaud = errors.New("contract: unsupported baud rate")
	// ErrUnknownFormat indicates a document format that can't be inferred.
	ErrUnknownFormat = errors.New("contract: unknown document format")
)

// BuildError attaches the command name to a build error.
type BuildError struct {
	Command string
	Err     error
}

// Error implements error.
func (e *BuildError) Error() string {
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Err
}
