package errors

import (
	"errors"
	"fmt"
)

// Common error types shared across the sample service
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownAction  = errors.New("unknown action")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
