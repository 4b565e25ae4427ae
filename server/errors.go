package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-esign-auth/actions"
	"github.com/jrsteele09/go-esign-auth/auth"
	"github.com/jrsteele09/go-esign-auth/esign"
	apperrors "github.com/jrsteele09/go-esign-auth/internal/errors"
	"github.com/rs/zerolog/log"
)

// errorPage is the data of error.html.
type errorPage struct {
	Status   int
	Title    string
	Message  string
	Detail   string
	RetryURL string
}

// renderError logs err and renders the error page for it.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	page := errorPageFor(err)

	event := log.Ctx(r.Context()).Warn()
	if page.Status >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	if authErr, ok := auth.AsError(err); ok {
		event = event.Str("kind", string(authErr.Kind))
		if authErr.ProviderBody != "" {
			event = event.Str("provider_body", authErr.ProviderBody)
		}
	}
	event.Err(err).Int("status", page.Status).Msg("request failed")

	s.renderErrorPage(w, r, page)
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, page errorPage) {
	render(w, r, s.pages.error, page.Status, page)
}

func errorPageFor(err error) errorPage {
	if authErr, ok := auth.AsError(err); ok {
		page := newErrorPage(authErr.Kind.HTTPStatus(), authErr.Kind.UserMessage())
		switch authErr.Kind {
		case auth.KindConsentDenied:
			page.Detail = authErr.Code
			if authErr.Description != "" {
				page.Detail += ": " + authErr.Description
			}
		case auth.KindInvalidState, auth.KindTokenExchangeFailed, auth.KindUserInfoFailed:
			page.RetryURL = RouteAuth
		}
		return page
	}

	switch {
	case errors.Is(err, apperrors.ErrUnknownAction):
		return newErrorPage(http.StatusBadRequest, "The requested example does not exist.")

	case errors.Is(err, actions.ErrEnvelopeRequired):
		return newErrorPage(http.StatusBadRequest, "This example needs an envelope. Send an envelope first or pass envelope_id.")

	case errors.Is(err, actions.ErrNotConfigured):
		return newErrorPage(http.StatusConflict, "This example is not configured. Check the configuration warnings printed at startup.")

	case errors.Is(err, actions.ErrOperationFailed):
		page := newErrorPage(http.StatusBadGateway, "The e-signature API call failed. You are still signed in and can try again.")
		if apiErr, ok := esign.IsAPIError(err); ok {
			page.Detail = apiErr.ErrorCode
			if apiErr.Message != "" {
				page.Detail += ": " + apiErr.Message
			}
		}
		var opErr *actions.OperationError
		if errors.As(err, &opErr) {
			page.RetryURL = RouteRun + "?" + url.Values{queryAction: {string(opErr.Action)}}.Encode()
		}
		return page

	default:
		return newErrorPage(http.StatusInternalServerError, "Something went wrong.")
	}
}

func newErrorPage(status int, message string) errorPage {
	return errorPage{Status: status, Title: http.StatusText(status), Message: message}
}
