package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced user does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports an empty or invalid required field. It is a
// correctable input problem and is never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
