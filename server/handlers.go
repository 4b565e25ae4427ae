package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-esign-auth/actions"
	"github.com/jrsteele09/go-esign-auth/auth"
	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/jrsteele09/go-esign-auth/sessions"
	"github.com/rs/zerolog/log"
)

// actionParamNames are the query parameters /auth and /run pass on to actions.
var actionParamNames = []string{actions.ParamEnvelopeID}

type indexPage struct {
	Title          string
	Actions        []actions.Descriptor
	SignedIn       bool
	AccountID      string
	AccountName    string
	LastEnvelopeID string
}

type resultPage struct {
	Title      string
	Action     actions.Descriptor
	Message    string
	Details    string
	EnvelopeID string
}

// IndexHandler renders the list of examples.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := indexPage{
			Title:   s.config.GetAppName(),
			Actions: actions.Catalogue(),
		}
		if sess := s.currentSession(r); sess != nil {
			data.LastEnvelopeID = sess.LastEnvelopeID
			if sess.Authenticated(s.nowTime()) && sess.Account != nil {
				data.SignedIn = true
				data.AccountID = sess.Account.AccountID
				data.AccountName = sess.Account.AccountName
			}
		}
		render(w, r, s.pages.index, http.StatusOK, data)
	}
}

// BeginAuthHandler starts the authorization round trip for the requested action.
func (s *Server) BeginAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		actionID, err := actions.ParseActionID(query.Get(queryAction))
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		id := s.ensureSessionID(w, r)
		redirect, err := s.auth.BeginAuthorization(r.Context(), id, string(actionID), actionParams(query))
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		log.Ctx(r.Context()).Debug().Str("action", string(actionID)).Msg("redirecting to the authorization server")
		http.Redirect(w, r, redirect.URL, http.StatusFound)
	}
}

// CallbackHandler completes the round trip and runs the action captured when it started.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(r)
		result, err := s.auth.HandleCallback(r.Context(), id, auth.CallbackParamsFromQuery(r.URL.Query()))
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		actionID, err := actions.ParseActionID(result.Action)
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		var lastEnvelopeID string
		if sess := s.currentSession(r); sess != nil {
			lastEnvelopeID = sess.LastEnvelopeID
		}
		s.runAction(w, r, id, lastEnvelopeID, actionID, result.APIContext, result.ActionParams)
	}
}

// RunHandler runs an action with the API context cached on the session. A
// session without one is sent through /auth for the same action.
func (s *Server) RunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		actionID, err := actions.ParseActionID(query.Get(queryAction))
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		sess := s.currentSession(r)
		if !sess.Authenticated(s.nowTime()) {
			http.Redirect(w, r, RouteAuth+"?"+r.URL.RawQuery, http.StatusFound)
			return
		}
		s.runAction(w, r, sess.ID, sess.LastEnvelopeID, actionID, *sess.APIContext, actionParams(query))
	}
}

// LogoutHandler forgets the session and its token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id := sessionID(r); id != "" {
			if err := s.sessions.Delete(id); err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("failed to delete session")
			}
		}
		s.clearSessionCookie(w, r)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) runAction(w http.ResponseWriter, r *http.Request, id, lastEnvelopeID string, actionID actions.ActionID, api oauthmodel.APIContext, raw map[string]string) {
	desc, _ := actionID.Describe()
	params := actions.Params(raw)
	if desc.NeedsEnvelope {
		params = params.WithDefault(actions.ParamEnvelopeID, lastEnvelopeID)
	}

	result, err := s.actions.Dispatch(r.Context(), actionID, api, params)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if result.EnvelopeID != "" && result.EnvelopeID != lastEnvelopeID {
		s.rememberEnvelope(r, id, result.EnvelopeID)
	}
	if result.RedirectURL != "" {
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
		return
	}

	page := resultPage{
		Title:      desc.Title,
		Action:     desc,
		Message:    result.Message,
		EnvelopeID: result.EnvelopeID,
	}
	if result.Details != nil {
		if b, err := json.MarshalIndent(result.Details, "", "  "); err == nil {
			page.Details = string(b)
		}
	}
	render(w, r, s.pages.result, http.StatusOK, page)
}

func (s *Server) rememberEnvelope(r *http.Request, id, envelopeID string) {
	_, err := s.sessions.Update(id, false, func(sess *sessions.AuthSession) error {
		sess.LastEnvelopeID = envelopeID
		return nil
	})
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("envelope_id", envelopeID).Msg("failed to remember envelope")
	}
}

// currentSession returns the request's session, or nil.
func (s *Server) currentSession(r *http.Request) *sessions.AuthSession {
	id := sessionID(r)
	if id == "" {
		return nil
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil
	}
	return sess
}

func actionParams(query url.Values) map[string]string {
	params := make(map[string]string)
	for _, name := range actionParamNames {
		if v := query.Get(name); v != "" {
			params[name] = v
		}
	}
	return params
}
