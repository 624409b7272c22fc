// Package errors contains helpers for wrapping errors with stack traces and
// aggregating errors from concurrent work.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New creates a new error with a stack trace. If the argument is already an
// error, it is wrapped; otherwise it is formatted with %v first.
func New(val any) error {
	if err, ok := val.(error); ok {
		return goerrors.Wrap(err, 1)
	}

	return goerrors.Wrap(fmt.Errorf("%v", val), 1)
}

// Errorf creates a new formatted error wrapped with a stack trace.
func Errorf(message string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf(message, args...), 1)
}

// WithStackTrace wraps the given error with a stack trace. Returns nil for nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}

	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix wraps the given error with a stack trace and prepends
// the given message to the error text. Returns nil for nil.
func WithStackTraceAndPrefix(err error, message string, args ...any) error {
	if err == nil {
		return nil
	}

	return goerrors.WrapPrefix(err, fmt.Sprintf(message, args...), 1)
}

// ErrorStack returns the error message together with its callstack, or an
// empty string if the error carries no stack trace.
func ErrorStack(err error) string {
	if err == nil {
		return ""
	}

	goErr := new(goerrors.Error)
	if errors.As(err, &goErr) {
		return goErr.ErrorStack()
	}

	return ""
}

// ErrorWithExitCode carries the process exit code that should be used when the
// wrapped error reaches main.
type ErrorWithExitCode struct {
	Err      error
	ExitCode int
}

func (err ErrorWithExitCode) Error() string {
	return err.Err.Error()
}

func (err ErrorWithExitCode) Unwrap() error {
	return err.Err
}

// Stdlib re-exports so callers need a single errors import.

// As is equivalent to errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is equivalent to errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap is equivalent to errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join is equivalent to errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
