package api

import (
	"errors"
	"fmt"
)

// Error kinds shared by every operation. Messages are meant for direct
// display; the kind only drives classification at the transport boundary.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Error is a display-ready message tagged with one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// InvalidInput reports a missing or malformed request field.
func InvalidInput(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced path that does not exist.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// AlreadyExists reports a file that would be overwritten without force.
func AlreadyExists(format string, args ...interface{}) error {
	return &Error{Kind: ErrAlreadyExists, Msg: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err should be surfaced as a parameter error
// rather than an execution failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
