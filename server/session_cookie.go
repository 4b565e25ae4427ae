package server

import (
	"net/http"

	"github.com/google/uuid"
)

// sessionCookieName is the cookie holding the browser's AuthSession id.
const sessionCookieName = "esign_session_id"

// sessionID returns the session id from the request cookie, or "" when the
// cookie is missing or does not hold a session id.
func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

// ensureSessionID returns the request's session id, issuing a new one and
// setting the cookie when there is none.
func (s *Server) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	if id := sessionID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	s.setSessionCookie(w, r, id)
	return id
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies() || getScheme(r) == "https",
		// Lax so the cookie comes back on the provider's top-level redirect.
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies() || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
