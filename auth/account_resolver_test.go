package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jrsteele09/go-esign-auth/auth"
	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testToken = oauthmodel.Token{AccessToken: "tok1", TokenType: "Bearer"}

func TestResolveContext_DefaultAtAnyPosition(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for pos := range n {
			t.Run(fmt.Sprintf("%d accounts default at %d", n, pos), func(t *testing.T) {
				accounts := make([]oauthmodel.AccountInfo, n)
				for i := range accounts {
					accounts[i] = oauthmodel.AccountInfo{
						AccountID: fmt.Sprintf("A-%d", i),
						BaseURI:   fmt.Sprintf("https://site%d.example.com", i),
					}
				}
				accounts[pos].IsDefault = true

				ctx, err := auth.ResolveContext(context.Background(), accounts, testToken)
				require.NoError(t, err)
				require.Equal(t, oauthmodel.APIContext{
					AccessToken: "tok1",
					AccountID:   fmt.Sprintf("A-%d", pos),
					BasePath:    fmt.Sprintf("https://site%d.example.com/restapi", pos),
				}, ctx)
			})
		}
	}
}

func TestResolveContext_NoDefaultAccount(t *testing.T) {
	tests := map[string][]oauthmodel.AccountInfo{
		"nil":     nil,
		"empty":   {},
		"none set": {
			{AccountID: "A-1", BaseURI: "https://na.example.com"},
			{AccountID: "A-2", BaseURI: "https://eu.example.com"},
		},
	}
	for name, accounts := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, err := auth.ResolveContext(context.Background(), accounts, testToken)
			require.ErrorIs(t, err, auth.ErrNoDefaultAccount)
			require.Equal(t, oauthmodel.APIContext{}, ctx)
		})
	}
}

func TestResolveContext_IsIdempotent(t *testing.T) {
	accounts := []oauthmodel.AccountInfo{
		{AccountID: "A-2", BaseURI: "https://eu.example.com"},
		{AccountID: "A-1", BaseURI: "https://na.example.com/", IsDefault: true},
	}

	first, err := auth.ResolveContext(context.Background(), accounts, testToken)
	require.NoError(t, err)
	second, err := auth.ResolveContext(context.Background(), accounts, testToken)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "https://na.example.com/restapi", first.BasePath)

	// Feeding the result back in does not grow the suffix.
	accounts[1].BaseURI = first.BasePath
	third, err := auth.ResolveContext(context.Background(), accounts, testToken)
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestResolveContext_FirstOfSeveralDefaultsWins(t *testing.T) {
	accounts := []oauthmodel.AccountInfo{
		{AccountID: "A-1", BaseURI: "https://na.example.com"},
		{AccountID: "A-2", BaseURI: "https://eu.example.com", IsDefault: true},
		{AccountID: "A-3", BaseURI: "https://au.example.com", IsDefault: true},
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()

	apiCtx, err := auth.ResolveContext(logger.WithContext(context.Background()), accounts, testToken)
	require.NoError(t, err)
	require.Equal(t, "A-2", apiCtx.AccountID)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "req-1", entry["request_id"])
	require.Equal(t, "A-2", entry["selected"])
	require.Equal(t, "A-3", entry["ignored"])
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		baseURI string
		want    string
	}{
		{"https://na.example.com", "https://na.example.com/restapi"},
		{"https://na.example.com/", "https://na.example.com/restapi"},
		{"https://na.example.com//", "https://na.example.com/restapi"},
		{"https://na.example.com/restapi", "https://na.example.com/restapi"},
		{"https://na.example.com/restapi/", "https://na.example.com/restapi"},
	}
	for _, tt := range tests {
		t.Run(tt.baseURI, func(t *testing.T) {
			require.Equal(t, tt.want, auth.BasePath(tt.baseURI))
		})
	}
}
