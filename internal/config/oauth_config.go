package config

import "strings"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetAuthServer() string
	GetIssuerURL() string
	GetAuthURL() string
	GetTokenURL() string
	GetUserInfoURL() string
	GetUseDiscovery() bool
	GetScopes() []string
	GetRedirectURL() string
	GetStateLength() int
}

type OAuth struct {
	vars *EnvVars
}

var _ OAuthConfig = OAuth{}

const (
	authPath     = "/oauth/auth"
	tokenPath    = "/oauth/token"
	userInfoPath = "/oauth/userinfo"

	// CallbackPath is where the identity provider sends the browser back to.
	CallbackPath = "/auth/callback"
)

func (o OAuth) GetClientID() string {
	return o.vars.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.vars.ClientSecret
}

func (o OAuth) GetAuthServer() string {
	return strings.TrimRight(o.vars.AuthServer, "/")
}

// GetIssuerURL is AUTH_SERVER as configured. Discovery compares it with the
// issuer in the provider's document, so a trailing slash is kept.
func (o OAuth) GetIssuerURL() string {
	return strings.TrimSpace(o.vars.AuthServer)
}

func (o OAuth) GetAuthURL() string {
	return o.GetAuthServer() + authPath
}

func (o OAuth) GetTokenURL() string {
	return o.GetAuthServer() + tokenPath
}

func (o OAuth) GetUserInfoURL() string {
	return o.GetAuthServer() + userInfoPath
}

func (o OAuth) GetUseDiscovery() bool {
	return o.vars.OIDCDiscovery
}

func (o OAuth) GetScopes() []string {
	scopes := make([]string, 0, len(o.vars.Scopes))
	for _, s := range o.vars.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func (o OAuth) GetRedirectURL() string {
	return o.vars.GetBaseURL() + CallbackPath
}

func (OAuth) GetStateLength() int {
	return 32 // 32 bytes = 256 bits
}
