package actions

import (
	"errors"
	"fmt"
)

var (
	// ErrOperationFailed marks a failure of the e-signature API or of local
	// resources while running an action. The session's API context stays valid.
	ErrOperationFailed = errors.New("downstream operation failed")

	// ErrEnvelopeRequired is returned by actions that read an envelope when
	// none was given and none was created earlier in the session.
	ErrEnvelopeRequired = errors.New("an envelope id is required; send an envelope first or pass envelope_id")

	// ErrNotConfigured is returned when a setting the action needs still holds its placeholder.
	ErrNotConfigured = errors.New("action is not configured")
)

// OperationError is returned by Registry.Dispatch for failed actions.
type OperationError struct {
	Action ActionID
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Action, ErrOperationFailed, e.Err)
}

func (e *OperationError) Unwrap() []error {
	return []error{ErrOperationFailed, e.Err}
}
