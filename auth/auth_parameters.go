package auth

import (
	"maps"
	"net/url"

	"github.com/jrsteele09/go-esign-auth/oauthmodel"
)

// Query parameter names the identity provider sends back to the callback.
const (
	paramCode             = "code"
	paramState            = "state"
	paramError            = "error"
	paramErrorDescription = "error_description"
)

// RedirectInstruction tells the HTTP layer where to send the browser.
type RedirectInstruction struct {
	URL string
}

// CallbackParams are the query parameters of the provider's redirect back to the app.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackParamsFromQuery reads the callback parameters from a request query.
func CallbackParamsFromQuery(q url.Values) CallbackParams {
	return CallbackParams{
		Code:             q.Get(paramCode),
		State:            q.Get(paramState),
		Error:            q.Get(paramError),
		ErrorDescription: q.Get(paramErrorDescription),
	}
}

// Denied reports whether the provider returned an error instead of a code.
func (p CallbackParams) Denied() bool {
	return p.Error != ""
}

// CallbackResult is what a successful callback hands to the dispatcher. The
// requested action and its parameters are read in the same step that consumes
// the state, so a second /auth call cannot change what this callback runs.
type CallbackResult struct {
	APIContext oauthmodel.APIContext
	Account    oauthmodel.AccountInfo
	User       oauthmodel.UserInfo

	Action       string
	ActionParams map[string]string
}

func cloneParams(params map[string]string) map[string]string {
	if params == nil {
		return map[string]string{}
	}
	return maps.Clone(params)
}
