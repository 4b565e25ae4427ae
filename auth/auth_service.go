package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-esign-auth/internal/config"
	apperrors "github.com/jrsteele09/go-esign-auth/internal/errors"
	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/jrsteele09/go-esign-auth/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Config is the part of the service configuration the authorization flow needs.
type Config interface {
	config.OAuthConfig
	config.SecurityConfig
}

// TokenObserver is called with every token obtained from the token endpoint.
type TokenObserver func(ctx context.Context, token oauthmodel.Token)

// tokenPrefixLength is how much of an access token diagnostics may show.
const tokenPrefixLength = 15

// LogTokenObserver logs the start of the access token and its expiry.
func LogTokenObserver(ctx context.Context, token oauthmodel.Token) {
	zerolog.Ctx(ctx).Info().
		Str("access_token", token.Prefix(tokenPrefixLength)+"...").
		Time("expires_at", token.ExpiresAt).
		Msg("received access token")
}

// AuthorizationService runs the client side of the authorization-code grant:
// it starts the browser redirect, checks and exchanges the callback, and
// resolves the account the API calls are made against.
type AuthorizationService struct {
	oauth    *oauth2.Config
	provider *oidc.Provider
	sessions sessions.Repo

	httpClient   *http.Client
	stateLength  int
	stateTimeout time.Duration
	requirePKCE  bool
	observer     TokenObserver
	nowTime      func() time.Time
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithHTTPClient sets the client used for discovery, token and user-info calls.
func WithHTTPClient(c *http.Client) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.httpClient = c
	}
}

// WithTokenObserver replaces the default token logging hook.
func WithTokenObserver(o TokenObserver) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.observer = o
	}
}

// NewAuthorizationService builds the service from configuration. With
// discovery enabled the provider's endpoints are fetched from its discovery
// document, otherwise they are derived from the configured auth server.
func NewAuthorizationService(ctx context.Context, cfg Config, repo sessions.Repo, options ...AuthorizationServiceOption) (*AuthorizationService, error) {
	if cfg == nil {
		return nil, errors.New("[NewAuthorizationService] config is required")
	}
	if repo == nil {
		return nil, errors.New("[NewAuthorizationService] sessions repo is required")
	}

	as := &AuthorizationService{
		sessions:     repo,
		stateLength:  cfg.GetStateLength(),
		stateTimeout: cfg.GetAuthStateTimeout(),
		requirePKCE:  cfg.GetRequirePKCE(),
		observer:     LogTokenObserver,
		nowTime:      time.Now,
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(as)
	}

	provider, err := as.newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	as.provider = provider

	endpoint := provider.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInHeader
	as.oauth = &oauth2.Config{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		Endpoint:     endpoint,
		RedirectURL:  cfg.GetRedirectURL(),
		Scopes:       cfg.GetScopes(),
	}

	return as, nil
}

func (as *AuthorizationService) newProvider(ctx context.Context, cfg Config) (*oidc.Provider, error) {
	ctx = as.clientContext(ctx)
	if cfg.GetUseDiscovery() {
		provider, err := oidc.NewProvider(ctx, cfg.GetIssuerURL())
		if err != nil {
			return nil, fmt.Errorf("[NewAuthorizationService] provider discovery: %w", err)
		}
		return provider, nil
	}
	return (&oidc.ProviderConfig{
		IssuerURL:   cfg.GetAuthServer(),
		AuthURL:     cfg.GetAuthURL(),
		TokenURL:    cfg.GetTokenURL(),
		UserInfoURL: cfg.GetUserInfoURL(),
	}).NewProvider(ctx), nil
}

// clientContext makes oauth2 and go-oidc use the configured HTTP client.
func (as *AuthorizationService) clientContext(ctx context.Context) context.Context {
	if as.httpClient == nil {
		return ctx
	}
	return oidc.ClientContext(ctx, as.httpClient)
}

// Endpoint returns the provider endpoints in use.
func (as *AuthorizationService) Endpoint() oauth2.Endpoint {
	return as.oauth.Endpoint
}

// BeginAuthorization records the requested action on the session, issues a
// fresh state (and PKCE verifier) and returns the provider URL to send the
// browser to. A second call on the same session replaces the pending state.
func (as *AuthorizationService) BeginAuthorization(ctx context.Context, sessionID, action string, params map[string]string) (RedirectInstruction, error) {
	if sessionID == "" {
		return RedirectInstruction{}, fmt.Errorf("[AuthorizationService.BeginAuthorization] %w: session id is required", apperrors.ErrInvalidRequest)
	}

	state, err := generateRandomString(as.stateLength)
	if err != nil {
		return RedirectInstruction{}, fmt.Errorf("[AuthorizationService.BeginAuthorization] state: %w", err)
	}

	pending := &sessions.PendingAuthorization{
		State:    state,
		IssuedAt: as.nowTime(),
	}
	var opts []oauth2.AuthCodeOption
	if as.requirePKCE {
		pending.CodeVerifier = oauth2.GenerateVerifier()
		opts = append(opts, oauth2.S256ChallengeOption(pending.CodeVerifier))
	}

	_, err = as.sessions.Update(sessionID, true, func(s *sessions.AuthSession) error {
		s.RequestedAction = action
		s.ActionParams = cloneParams(params)
		s.Pending = pending
		return nil
	})
	if err != nil {
		return RedirectInstruction{}, fmt.Errorf("[AuthorizationService.BeginAuthorization] sessions.Update: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("session_id", sessionID).
		Str("action", action).
		Msg("authorization started")

	return RedirectInstruction{URL: as.oauth.AuthCodeURL(state, opts...)}, nil
}

// HandleCallback completes the round trip started by BeginAuthorization. On
// success the session holds the token, the selected account and the API
// context, and the result carries the action that was requested.
//
// The provider's error parameter is honoured first. Otherwise the state must
// match the pending one and be younger than the state timeout; it is consumed
// before the code is exchanged, so a replayed callback fails with InvalidState.
func (as *AuthorizationService) HandleCallback(ctx context.Context, sessionID string, params CallbackParams) (*CallbackResult, error) {
	logger := zerolog.Ctx(ctx)

	if params.Denied() {
		as.clearMatchingState(sessionID, params.State)
		return nil, &Error{
			Kind:        KindConsentDenied,
			Code:        params.Error,
			Description: params.ErrorDescription,
		}
	}

	pending, session, err := as.consumeState(sessionID, params.State)
	if err != nil {
		return nil, err
	}

	if age := as.nowTime().Sub(pending.IssuedAt); age > as.stateTimeout {
		return nil, invalidStatef("state issued %s ago exceeds the %s limit", age.Round(time.Second), as.stateTimeout)
	}

	if params.Code == "" {
		return nil, newError(KindTokenExchangeFailed, errors.New("callback carried no authorization code"))
	}

	token, err := as.exchange(ctx, params.Code, pending.CodeVerifier)
	if err != nil {
		return nil, err
	}
	as.observer(ctx, token)

	if _, err := as.sessions.Update(sessionID, false, func(s *sessions.AuthSession) error {
		s.ClearAuthentication()
		s.Token = &token
		return nil
	}); err != nil {
		return nil, fmt.Errorf("[AuthorizationService.HandleCallback] store token: %w", err)
	}

	user, err := as.userInfo(ctx, token)
	if err != nil {
		return nil, newError(KindUserInfoFailed, err)
	}

	account, err := DefaultAccount(ctx, user.Accounts)
	if err != nil {
		return nil, err
	}
	apiContext := newAPIContext(account, token)

	if _, err := as.sessions.Update(sessionID, false, func(s *sessions.AuthSession) error {
		s.Account = &account
		s.APIContext = &apiContext
		return nil
	}); err != nil {
		return nil, fmt.Errorf("[AuthorizationService.HandleCallback] store context: %w", err)
	}

	logger.Info().
		Str("session_id", sessionID).
		Str("account_id", apiContext.AccountID).
		Str("base_path", apiContext.BasePath).
		Msg("account context resolved")

	return &CallbackResult{
		APIContext:   apiContext,
		Account:      account,
		User:         user,
		Action:       session.RequestedAction,
		ActionParams: cloneParams(session.ActionParams),
	}, nil
}

// consumeState removes the pending authorization when the received state
// matches it and returns what was removed together with the session as it was
// at that moment. A mismatching state leaves the pending authorization in place.
func (as *AuthorizationService) consumeState(sessionID, state string) (*sessions.PendingAuthorization, *sessions.AuthSession, error) {
	if err := ValidateState(state); err != nil {
		return nil, nil, newError(KindInvalidState, err)
	}
	if sessionID == "" {
		return nil, nil, invalidStatef("no session for this callback")
	}

	var pending *sessions.PendingAuthorization
	session, err := as.sessions.Update(sessionID, false, func(s *sessions.AuthSession) error {
		if s.Pending == nil {
			return invalidStatef("no authorization is pending for this session")
		}
		if !statesMatch(s.Pending.State, state) {
			return invalidStatef("state does not match the pending authorization")
		}
		p := *s.Pending
		pending = &p
		s.Pending = nil
		return nil
	})
	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, nil, err
		}
		// Unknown or expired sessions cannot have issued this state.
		return nil, nil, newError(KindInvalidState, err)
	}
	return pending, session, nil
}

func (as *AuthorizationService) clearMatchingState(sessionID, state string) {
	if sessionID == "" || state == "" {
		return
	}
	_, _ = as.sessions.Update(sessionID, false, func(s *sessions.AuthSession) error {
		if s.Pending != nil && statesMatch(s.Pending.State, state) {
			s.Pending = nil
		}
		return nil
	})
}

func (as *AuthorizationService) exchange(ctx context.Context, code, verifier string) (oauthmodel.Token, error) {
	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	tok, err := as.oauth.Exchange(as.clientContext(ctx), code, opts...)
	if err != nil {
		authErr := newError(KindTokenExchangeFailed, err)
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			authErr.ProviderBody = string(retrieveErr.Body)
		}
		return oauthmodel.Token{}, authErr
	}
	return oauthmodel.TokenFromOAuth2(tok), nil
}

// userInfo queries the user-info endpoint with the freshly exchanged token.
func (as *AuthorizationService) userInfo(ctx context.Context, token oauthmodel.Token) (oauthmodel.UserInfo, error) {
	info, err := as.provider.UserInfo(as.clientContext(ctx), oauth2.StaticTokenSource(token.OAuth2()))
	if err != nil {
		return oauthmodel.UserInfo{}, err
	}
	var user oauthmodel.UserInfo
	if err := info.Claims(&user); err != nil {
		return oauthmodel.UserInfo{}, fmt.Errorf("decode user info: %w", err)
	}
	return user, nil
}

// generateRandomString creates a random base64url string from length bytes
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
