package sessions

import (
	"maps"
	"time"

	"github.com/jrsteele09/go-esign-auth/oauthmodel"
)

// AuthSession is the per-browser state of the sample. One exists per session
// cookie and nothing in it is ever shared between users.
//
// Lifecycle:
//  1. /auth creates or updates it with the requested action and a pending authorization
//  2. /auth/callback consumes the pending authorization and stores the token,
//     the selected account and the derived APIContext
//  3. later actions reuse the APIContext until the token expires
type AuthSession struct {
	ID string

	// RequestedAction is the operation the user asked for before being sent to log in.
	RequestedAction string
	// ActionParams are the extra query parameters of that request (e.g. envelope_id).
	ActionParams map[string]string

	// Pending is the outstanding authorization attempt. A new attempt replaces it,
	// a callback consumes it.
	Pending *PendingAuthorization

	Token      *oauthmodel.Token
	Account    *oauthmodel.AccountInfo
	APIContext *oauthmodel.APIContext

	// LastEnvelopeID is the most recent envelope created through this session.
	LastEnvelopeID string

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// PendingAuthorization is the anti-forgery material of one redirect round trip.
type PendingAuthorization struct {
	State        string
	CodeVerifier string // PKCE verifier, sent with the code exchange
	IssuedAt     time.Time
}

// Authenticated reports whether the session holds a usable API context at now.
func (s *AuthSession) Authenticated(now time.Time) bool {
	if s == nil || s.APIContext == nil || s.Token == nil {
		return false
	}
	return !s.Token.Expired(now)
}

// ClearAuthentication drops the token, account and API context but keeps the
// session itself.
func (s *AuthSession) ClearAuthentication() {
	s.Token = nil
	s.Account = nil
	s.APIContext = nil
}

// Clone returns a deep copy so callers never share pointers with the repository.
func (s *AuthSession) Clone() *AuthSession {
	if s == nil {
		return nil
	}
	c := *s
	c.ActionParams = maps.Clone(s.ActionParams)
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Token != nil {
		t := *s.Token
		c.Token = &t
	}
	if s.Account != nil {
		a := *s.Account
		c.Account = &a
	}
	if s.APIContext != nil {
		ac := *s.APIContext
		c.APIContext = &ac
	}
	return &c
}
