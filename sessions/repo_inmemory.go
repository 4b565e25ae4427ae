package sessions

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-esign-auth/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*AuthSession
	maxAge   time.Duration
	now      func() time.Time
}

// InMemoryOption configures an InMemoryRepo
type InMemoryOption func(*InMemoryRepo)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) InMemoryOption {
	return func(r *InMemoryRepo) {
		r.now = now
	}
}

// NewInMemoryRepo creates a new in-memory session repository. Sessions created
// through Update expire maxAge after creation; zero means they never expire.
func NewInMemoryRepo(maxAge time.Duration, opts ...InMemoryOption) *InMemoryRepo {
	r := &InMemoryRepo{
		sessions: make(map[string]*AuthSession),
		maxAge:   maxAge,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get retrieves a copy of a session by ID. An expired session is removed and
// reported as ErrSessionExpired.
func (r *InMemoryRepo) Get(sessionID string) (*AuthSession, error) {
	if sessionID == "" {
		return nil, errors.New("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrSessionNotFound, "[InMemoryRepo Get] %s", sessionID)
	}
	if r.expired(session) {
		delete(r.sessions, sessionID)
		return nil, apperrors.Wrapf(apperrors.ErrSessionExpired, "[InMemoryRepo Get] %s", sessionID)
	}

	return session.Clone(), nil
}

// Upsert stores a copy of the session
func (r *InMemoryRepo) Upsert(session *AuthSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.ID == "" {
		return errors.New("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := session.Clone()
	r.stamp(stored)
	r.sessions[session.ID] = stored
	return nil
}

// Update applies fn to a working copy of the session and stores it only when fn succeeds.
func (r *InMemoryRepo) Update(sessionID string, create bool, fn func(*AuthSession) error) (*AuthSession, error) {
	if sessionID == "" {
		return nil, errors.New("sessionID is required")
	}
	if fn == nil {
		return nil, errors.New("update function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[sessionID]
	if ok && r.expired(current) {
		delete(r.sessions, sessionID)
		if !create {
			return nil, apperrors.ErrSessionExpired
		}
		ok = false
	}

	var working *AuthSession
	switch {
	case ok:
		working = current.Clone()
	case create:
		working = &AuthSession{ID: sessionID}
	default:
		return nil, apperrors.ErrSessionNotFound
	}

	if err := fn(working); err != nil {
		return nil, err
	}

	// The ID is the map key and cannot be changed by fn.
	working.ID = sessionID
	r.stamp(working)
	r.sessions[sessionID] = working
	return working.Clone(), nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// DeleteExpired removes every session whose expiry is at or before now
func (r *InMemoryRepo) DeleteExpired(now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if !session.ExpiresAt.IsZero() && !now.Before(session.ExpiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired or not
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *InMemoryRepo) expired(s *AuthSession) bool {
	return !s.ExpiresAt.IsZero() && !r.now().Before(s.ExpiresAt)
}

// stamp sets the bookkeeping timestamps. Must be called with the lock held.
func (r *InMemoryRepo) stamp(s *AuthSession) {
	now := r.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() && r.maxAge > 0 {
		s.ExpiresAt = s.CreatedAt.Add(r.maxAge)
	}
	s.UpdatedAt = now
}
