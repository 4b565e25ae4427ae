package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/rs/zerolog"
)

// restAPISuffix is appended to an account's base URI to form the REST base path.
const restAPISuffix = "/restapi"

// ResolveContext selects the user's default account and derives the API
// context for it. It is pure: the same accounts and token always produce the
// same context.
func ResolveContext(ctx context.Context, accounts []oauthmodel.AccountInfo, token oauthmodel.Token) (oauthmodel.APIContext, error) {
	account, err := DefaultAccount(ctx, accounts)
	if err != nil {
		return oauthmodel.APIContext{}, err
	}
	return newAPIContext(account, token), nil
}

func newAPIContext(account oauthmodel.AccountInfo, token oauthmodel.Token) oauthmodel.APIContext {
	return oauthmodel.APIContext{
		AccessToken: token.AccessToken,
		AccountID:   account.AccountID,
		BasePath:    BasePath(account.BaseURI),
	}
}

// DefaultAccount returns the entry flagged is_default wherever it appears in
// the list. There is no fallback to the first entry: a user without a default
// account gets ErrNoDefaultAccount. When several entries claim to be the
// default the first one wins and the rest are logged through ctx's logger.
func DefaultAccount(ctx context.Context, accounts []oauthmodel.AccountInfo) (oauthmodel.AccountInfo, error) {
	found := -1
	for i, a := range accounts {
		if !a.IsDefault {
			continue
		}
		if found >= 0 {
			zerolog.Ctx(ctx).Warn().
				Str("selected", accounts[found].AccountID).
				Str("ignored", a.AccountID).
				Msg("more than one account is flagged as default")
			continue
		}
		found = i
	}
	if found < 0 {
		return oauthmodel.AccountInfo{}, newError(KindNoDefaultAccount,
			errors.New("none of the user's accounts is flagged as default"))
	}
	return accounts[found], nil
}

// BasePath turns an account base URI into the REST API base path, adding the
// /restapi suffix exactly once.
func BasePath(baseURI string) string {
	base := strings.TrimRight(baseURI, "/")
	if strings.HasSuffix(base, restAPISuffix) {
		return base
	}
	return base + restAPISuffix
}
