package service

import (
	"errors"
	"fmt"
)

// Domain errors recovered at the request boundary and mapped to HTTP
// statuses by the handlers.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation failed")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
