package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// ValidateState checks the shape of a state value received on the callback.
// Whether it is the right value is decided by comparing with the pending one.
func ValidateState(state string) error {
	if state == "" {
		return fmt.Errorf("state parameter is required")
	}

	// Should not contain whitespace
	if strings.TrimSpace(state) != state {
		return fmt.Errorf("state parameter must not contain leading/trailing whitespace")
	}

	return nil
}

// statesMatch compares the stored and received state in constant time.
func statesMatch(expected, received string) bool {
	if expected == "" || received == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}
