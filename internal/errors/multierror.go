package errors

import (
	"github.com/hashicorp/go-multierror"
)

// MultiError accumulates errors from independent units of work, such as
// parallel traversal branches. The zero value is ready to use.
type MultiError struct {
	inner *multierror.Error
}

// Error implements the error interface.
func (errs *MultiError) Error() string {
	if errs == nil || errs.inner == nil {
		return ""
	}

	return errs.inner.Error()
}

// Append returns a MultiError with the given errors added. Nil errors are
// ignored. Safe to call on a nil receiver.
func (errs *MultiError) Append(appendErrs ...error) *MultiError {
	if errs == nil {
		errs = &MultiError{inner: new(multierror.Error)}
	}

	return &MultiError{inner: multierror.Append(errs.inner, appendErrs...)}
}

// WrappedErrors returns the accumulated errors.
func (errs *MultiError) WrappedErrors() []error {
	if errs == nil || errs.inner == nil {
		return nil
	}

	return errs.inner.WrappedErrors()
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As.
func (errs *MultiError) Unwrap() []error {
	return errs.WrappedErrors()
}

// Len returns the number of accumulated errors.
func (errs *MultiError) Len() int {
	if errs == nil || errs.inner == nil {
		return 0
	}

	return len(errs.inner.Errors)
}

// ErrorOrNil returns nil when no errors have been accumulated, otherwise the
// MultiError itself.
func (errs *MultiError) ErrorOrNil() error {
	if errs == nil || errs.inner == nil {
		return nil
	}

	if err := errs.inner.ErrorOrNil(); err != nil {
		return errs
	}

	return nil
}
