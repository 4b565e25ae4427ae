package oauthmodel

import "errors"

// APIContext is everything a downstream e-signature API call needs. It is
// derived from a Token and the selected AccountInfo and belongs to exactly one
// session.
type APIContext struct {
	AccessToken string
	AccountID   string
	BasePath    string // account base URI + "/restapi"
}

var ErrIncompleteAPIContext = errors.New("api context is incomplete")

// Validate rejects a context missing any of its three parts.
func (c APIContext) Validate() error {
	if c.AccessToken == "" || c.AccountID == "" || c.BasePath == "" {
		return ErrIncompleteAPIContext
	}
	return nil
}
