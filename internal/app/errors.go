package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the resource does not exist or is not
	// visible to the requester.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates a missing or invalid bearer token.
	ErrUnauthenticated = errors.New("please authenticate")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
