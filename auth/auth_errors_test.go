package auth_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-esign-auth/auth"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := &auth.Error{Kind: auth.KindTokenExchangeFailed, Err: errors.New("boom")}
	wrapped := fmt.Errorf("callback: %w", err)

	require.ErrorIs(t, wrapped, auth.ErrTokenExchangeFailed)
	require.NotErrorIs(t, wrapped, auth.ErrInvalidState)

	got, ok := auth.AsError(wrapped)
	require.True(t, ok)
	require.Same(t, err, got)

	_, ok = auth.AsError(errors.New("plain"))
	require.False(t, ok)
}

func TestError_Message(t *testing.T) {
	err := &auth.Error{Kind: auth.KindConsentDenied, Code: "access_denied", Description: "no thanks"}
	require.Equal(t, "ConsentDenied: access_denied: no thanks", err.Error())

	err = &auth.Error{Kind: auth.KindInvalidState, Err: errors.New("state does not match")}
	require.Equal(t, "InvalidState: state does not match", err.Error())
	require.EqualError(t, errors.Unwrap(err), "state does not match")
}

func TestErrorKind_HTTPStatus(t *testing.T) {
	tests := map[auth.ErrorKind]int{
		auth.KindInvalidState:        http.StatusBadRequest,
		auth.KindConsentDenied:       http.StatusForbidden,
		auth.KindTokenExchangeFailed: http.StatusBadGateway,
		auth.KindUserInfoFailed:      http.StatusBadGateway,
		auth.KindNoDefaultAccount:    http.StatusConflict,
		auth.ErrorKind("Other"):      http.StatusInternalServerError,
	}
	for kind, status := range tests {
		require.Equal(t, status, kind.HTTPStatus(), kind)
		require.NotEmpty(t, kind.UserMessage(), kind)
	}
}

func TestCallbackParamsFromQuery(t *testing.T) {
	q, err := url.ParseQuery("code=abc&state=xyz&error=access_denied&error_description=nope")
	require.NoError(t, err)

	p := auth.CallbackParamsFromQuery(q)
	require.Equal(t, auth.CallbackParams{Code: "abc", State: "xyz", Error: "access_denied", ErrorDescription: "nope"}, p)
	require.True(t, p.Denied())
	require.False(t, auth.CallbackParams{Code: "abc"}.Denied())
}

func TestValidateState(t *testing.T) {
	require.NoError(t, auth.ValidateState("xyz"))

	err := auth.ValidateState("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")

	err = auth.ValidateState(" xyz ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "whitespace")
}
