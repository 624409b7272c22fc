package types

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a single requested entity does not exist. The
// discovery engine treats it as a warning, not a failure.
type NotFoundError struct {
	ResourceID string
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found", err.ResourceID)
}

// IsNotFound reports whether the error chain contains a NotFoundError.
func IsNotFound(err error) bool {
	var notFound NotFoundError
	return errors.As(err, &notFound)
}
