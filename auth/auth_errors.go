package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why an authorization round trip failed.
type ErrorKind string

const (
	KindInvalidState        ErrorKind = "InvalidState"
	KindConsentDenied       ErrorKind = "ConsentDenied"
	KindTokenExchangeFailed ErrorKind = "TokenExchangeFailed"
	KindUserInfoFailed      ErrorKind = "UserInfoFailed"
	KindNoDefaultAccount    ErrorKind = "NoDefaultAccount"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidState        = &Error{Kind: KindInvalidState}
	ErrConsentDenied       = &Error{Kind: KindConsentDenied}
	ErrTokenExchangeFailed = &Error{Kind: KindTokenExchangeFailed}
	ErrUserInfoFailed      = &Error{Kind: KindUserInfoFailed}
	ErrNoDefaultAccount    = &Error{Kind: KindNoDefaultAccount}
)

// Error is returned by the authorization service for every failed callback.
type Error struct {
	Kind ErrorKind
	Err  error

	// Code and Description echo the provider's error and error_description
	// parameters on a denied consent.
	Code        string
	Description string

	// ProviderBody is the raw body of a failed token endpoint response, if any.
	ProviderBody string
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so errors.Is(err, ErrInvalidState) holds for any InvalidState error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// HTTPStatus maps an error kind to the status the callback page is served with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInvalidState:
		return http.StatusBadRequest
	case KindConsentDenied:
		return http.StatusForbidden
	case KindTokenExchangeFailed, KindUserInfoFailed:
		return http.StatusBadGateway
	case KindNoDefaultAccount:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is the text shown to the browser for each kind.
func (k ErrorKind) UserMessage() string {
	switch k {
	case KindInvalidState:
		return "The sign-in attempt could not be verified or has expired. Please start again."
	case KindConsentDenied:
		return "Access was not granted. The example needs your consent to call the e-signature API."
	case KindTokenExchangeFailed:
		return "The authorization code could not be exchanged for an access token. Please start again."
	case KindUserInfoFailed:
		return "Your account details could not be retrieved. Please start again."
	case KindNoDefaultAccount:
		return "Your user has no default e-signature account. Set a default account and try again."
	default:
		return "Something went wrong."
	}
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func invalidStatef(format string, args ...any) *Error {
	return newError(KindInvalidState, fmt.Errorf(format, args...))
}
