package oauthmodel

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the result of a successful authorization-code exchange.
// It is never mutated; a refresh produces a new Token.
type Token struct {
	// AccessToken is sent as "Authorization: Bearer <access_token>" on every API call.
	AccessToken string

	// RefreshToken can obtain a new access token without a browser round trip.
	// Empty when the provider did not issue one.
	RefreshToken string

	// TokenType is normally "Bearer".
	TokenType string

	// ExpiresAt is computed from the provider's expires_in at exchange time.
	// Zero when the provider did not report a lifetime.
	ExpiresAt time.Time
}

// TokenFromOAuth2 copies the fields this service cares about out of an x/oauth2 token.
func TokenFromOAuth2(t *oauth2.Token) Token {
	if t == nil {
		return Token{}
	}
	return Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.Type(),
		ExpiresAt:    t.Expiry,
	}
}

// OAuth2 converts back for use with an oauth2.TokenSource.
func (t Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.ExpiresAt,
	}
}

// Expired reports whether the token has passed its expiry. Tokens without an
// expiry never expire from this service's point of view.
func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

// Prefix returns at most n leading characters of the access token, for logs.
func (t Token) Prefix(n int) string {
	if n < 0 {
		n = 0
	}
	if len(t.AccessToken) <= n {
		return t.AccessToken
	}
	return t.AccessToken[:n]
}
