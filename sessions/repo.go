package sessions

import "time"

// Repo defines the interface for session storage operations.
// Sessions are per-user and short-lived; they are never persisted.
type Repo interface {
	// Get retrieves a copy of a session by ID
	Get(sessionID string) (*AuthSession, error)

	// Upsert creates or replaces a session
	Upsert(session *AuthSession) error

	// Update applies fn to the stored session under the repository lock and
	// returns a copy of the result. When the session does not exist and create
	// is true a new empty session is passed to fn. If fn returns an error the
	// stored session is left untouched.
	Update(sessionID string, create bool, fn func(*AuthSession) error) (*AuthSession, error)

	// Delete removes a session by ID
	Delete(sessionID string) error

	// DeleteExpired removes sessions whose expiry is before now and returns how many were removed
	DeleteExpired(now time.Time) (int, error)
}
