package types

import "errors"

// ErrInvalidArgument classifies input validation failures raised by entity
// constructors. Match it with errors.Is; the concrete error is an
// *InvalidArgumentError carrying the exact message.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports a rejected constructor argument. Error returns
// Message verbatim so callers can compare it against the documented text.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Constructor validation errors.
var (
	ErrEmptyFullName error = &InvalidArgumentError{Message: "fullName cannot be an empty string"}
	ErrEmptyItemName error = &InvalidArgumentError{Message: "item name cannot be an empty string"}
)
