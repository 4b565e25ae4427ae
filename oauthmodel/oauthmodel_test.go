package oauthmodel_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestUserInfo_Decode(t *testing.T) {
	body := `{
		"sub": "user-1",
		"name": "Jane Signer",
		"email": "jane@example.com",
		"accounts": [
			{"account_id": "A-2", "account_name": "Side", "base_uri": "https://eu.example.com", "is_default": false},
			{"account_id": "A-1", "account_name": "Main", "base_uri": "https://na.example.com/", "is_default": true},
			{"account_id": "A-3", "account_name": "Legacy", "base_uri": "https://na.example.com", "is_default": "false"},
			{"account_id": "A-4", "account_name": "Quoted", "base_uri": "https://na.example.com", "is_default": "true"},
			{"account_id": "A-5", "account_name": "Missing", "base_uri": "https://na.example.com"}
		]
	}`

	var info oauthmodel.UserInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))

	require.Equal(t, "user-1", info.Subject)
	require.Len(t, info.Accounts, 5)
	require.Equal(t, oauthmodel.AccountInfo{
		AccountID:   "A-1",
		AccountName: "Main",
		BaseURI:     "https://na.example.com/",
		IsDefault:   true,
	}, info.Accounts[1])
	require.False(t, info.Accounts[0].IsDefault)
	require.False(t, info.Accounts[2].IsDefault)
	require.True(t, info.Accounts[3].IsDefault)
	require.False(t, info.Accounts[4].IsDefault)
}

func TestAccountInfo_InvalidIsDefault(t *testing.T) {
	var a oauthmodel.AccountInfo
	err := json.Unmarshal([]byte(`{"account_id":"A-1","is_default":"maybe"}`), &a)
	require.Error(t, err)
	require.Contains(t, err.Error(), "A-1")
}

func TestToken(t *testing.T) {
	expiry := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := oauthmodel.TokenFromOAuth2(&oauth2.Token{
		AccessToken:  "eyJ0eXAiOiJNVCIsImFsZyI6IlJTMjU2In0",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		Expiry:       expiry,
	})

	t.Run("copies fields", func(t *testing.T) {
		require.Equal(t, "refresh", tok.RefreshToken)
		require.Equal(t, "Bearer", tok.TokenType)
		require.Equal(t, expiry, tok.ExpiresAt)
	})

	t.Run("prefix", func(t *testing.T) {
		require.Equal(t, "eyJ0eXAiOiJNVCI", tok.Prefix(15))
		require.Equal(t, tok.AccessToken, tok.Prefix(500))
		require.Equal(t, "", tok.Prefix(-1))
	})

	t.Run("expiry", func(t *testing.T) {
		require.False(t, tok.Expired(expiry.Add(-time.Second)))
		require.True(t, tok.Expired(expiry))
		require.False(t, oauthmodel.Token{AccessToken: "x"}.Expired(time.Now()))
	})

	t.Run("round trip to oauth2", func(t *testing.T) {
		o := tok.OAuth2()
		require.Equal(t, tok.AccessToken, o.AccessToken)
		require.Equal(t, expiry, o.Expiry)
	})

	t.Run("nil oauth2 token", func(t *testing.T) {
		require.Equal(t, oauthmodel.Token{}, oauthmodel.TokenFromOAuth2(nil))
	})
}

func TestAPIContext_Validate(t *testing.T) {
	require.NoError(t, oauthmodel.APIContext{AccessToken: "t", AccountID: "a", BasePath: "b"}.Validate())
	require.ErrorIs(t, oauthmodel.APIContext{AccessToken: "t", AccountID: "a"}.Validate(), oauthmodel.ErrIncompleteAPIContext)
}
