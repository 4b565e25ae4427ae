package esign

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"golang.org/x/oauth2"
)

const (
	apiVersion     = "v2.1"
	defaultTimeout = 30 * time.Second
)

// Client calls the e-signature REST API for one account on behalf of one
// user. It is built from the session's API context and never shared between
// sessions.
type Client struct {
	accountURL string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*clientOptions)

type clientOptions struct {
	base *http.Client
}

// WithBaseHTTPClient sets the client whose transport carries the bearer requests.
func WithBaseHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.base = c
	}
}

// NewClient returns a client bound to apiCtx. Every request carries the
// context's access token as a bearer token.
func NewClient(ctx context.Context, apiCtx oauthmodel.APIContext, opts ...ClientOption) (*Client, error) {
	if err := apiCtx.Validate(); err != nil {
		return nil, fmt.Errorf("[esign NewClient] %w", err)
	}
	if _, err := url.Parse(apiCtx.BasePath); err != nil {
		return nil, fmt.Errorf("[esign NewClient] base path: %w", err)
	}

	o := clientOptions{base: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(&o)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiCtx.AccessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, o.base), src)
	httpClient.Timeout = o.base.Timeout

	return &Client{
		accountURL: strings.TrimRight(apiCtx.BasePath, "/") + "/" + apiVersion + "/accounts/" + url.PathEscape(apiCtx.AccountID),
		httpClient: httpClient,
	}, nil
}

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
	Body       string `json:"-"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("esign api returned %d: %s: %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("esign api returned %d: %s", e.StatusCode, e.Body)
}

// IsAPIError reports whether err carries an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
