package cli

import (
	"errors"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// exitError tags an error with the process exit code it should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// usageError marks err as caused by bad input.
func usageError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// systemError marks err as an environment or storage failure.
func systemError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// userErrors are classified as bad input wherever they surface.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidArgument,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidFilter,
}

// classify leaves errors that already carry an exit code, or that name a
// bad-input condition, untouched and tags everything else as a system
// failure. Storage calls surface SQL, persistence and hydration errors
// without a tag.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return systemError(err)
}

// exitCode maps an error returned by a command to a process exit code.
// Errors not otherwise tagged are user errors, matching cobra's own
// argument and unknown-command failures.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
