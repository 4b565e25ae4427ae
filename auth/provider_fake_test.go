package auth_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeAccount struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	BaseURI     string `json:"base_uri"`
	IsDefault   any    `json:"is_default"`
}

// fakeProvider is an identity provider with call counters on the token and
// user-info endpoints.
type fakeProvider struct {
	server *httptest.Server

	tokenCalls    atomic.Int32
	userInfoCalls atomic.Int32

	mu            sync.Mutex
	tokenForms    []url.Values
	tokenAuth     []string
	tokenStatus   int
	tokenBody     string
	userInfoCode  int
	accounts      []fakeAccount
	tokenAccounts map[string][]fakeAccount
	issuer        string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	fp := &fakeProvider{
		accounts: []fakeAccount{
			{AccountID: "A-2", AccountName: "Side", BaseURI: "https://eu.example.com", IsDefault: false},
			{AccountID: "A-1", AccountName: "Main", BaseURI: "https://na.example.com/", IsDefault: true},
		},
		tokenAccounts: map[string][]fakeAccount{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", fp.handleToken)
	mux.HandleFunc("GET /oauth/userinfo", fp.handleUserInfo)
	mux.HandleFunc("GET /.well-known/openid-configuration", fp.handleDiscovery)

	fp.server = httptest.NewServer(mux)
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakeProvider) URL() string {
	return fp.server.URL
}

// failToken makes the token endpoint answer with status and body.
func (fp *fakeProvider) failToken(status int, body string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.tokenStatus = status
	fp.tokenBody = body
}

func (fp *fakeProvider) failUserInfo(status int) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.userInfoCode = status
}

func (fp *fakeProvider) setAccounts(accounts ...fakeAccount) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.accounts = accounts
}

// setAccountsFor returns accounts only for the given access token.
func (fp *fakeProvider) setAccountsFor(accessToken string, accounts ...fakeAccount) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.tokenAccounts[accessToken] = accounts
}

func (fp *fakeProvider) lastTokenForm() url.Values {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if len(fp.tokenForms) == 0 {
		return nil
	}
	return fp.tokenForms[len(fp.tokenForms)-1]
}

func (fp *fakeProvider) lastTokenAuth() string {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if len(fp.tokenAuth) == 0 {
		return ""
	}
	return fp.tokenAuth[len(fp.tokenAuth)-1]
}

// handleToken issues "tok-<code>" unless the code is "abc", which gets "tok1".
func (fp *fakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	fp.tokenCalls.Add(1)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fp.mu.Lock()
	fp.tokenForms = append(fp.tokenForms, r.PostForm)
	fp.tokenAuth = append(fp.tokenAuth, r.Header.Get("Authorization"))
	status, body := fp.tokenStatus, fp.tokenBody
	fp.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}

	code := r.PostForm.Get("code")
	accessToken := "tok-" + code
	if code == "abc" {
		accessToken = "tok1"
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  accessToken,
		"token_type":    "Bearer",
		"refresh_token": "refresh-" + code,
		"expires_in":    3600,
	})
}

func (fp *fakeProvider) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	fp.userInfoCalls.Add(1)

	fp.mu.Lock()
	status := fp.userInfoCode
	accounts := fp.accounts
	accessToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if specific, ok := fp.tokenAccounts[accessToken]; ok {
		accounts = specific
	}
	fp.mu.Unlock()

	if status != 0 {
		http.Error(w, "user info unavailable", status)
		return
	}
	if accessToken == "" {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"sub":      "user-1",
		"name":     "Jane Signer",
		"email":    "jane@example.com",
		"accounts": accounts,
	})
}

// setIssuer changes the issuer the discovery document advertises.
func (fp *fakeProvider) setIssuer(issuer string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.issuer = issuer
}

func (fp *fakeProvider) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	fp.mu.Lock()
	issuer := fp.issuer
	fp.mu.Unlock()
	if issuer == "" {
		issuer = fp.URL()
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{
		"issuer": %q,
		"authorization_endpoint": %q,
		"token_endpoint": %q,
		"userinfo_endpoint": %q,
		"jwks_uri": %q
	}`, issuer, fp.URL()+"/oauth/auth", fp.URL()+"/oauth/token", fp.URL()+"/oauth/userinfo", fp.URL()+"/oauth/jwks")
}
