package oauthmodel

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AccountInfo is one of the accounts returned by the identity provider's
// user-info endpoint for the authenticated user.
type AccountInfo struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	BaseURI     string `json:"base_uri"` // e.g. "https://demo.docusign.net"
	IsDefault   bool   `json:"is_default"`
}

// UnmarshalJSON accepts is_default as either a JSON boolean or a quoted
// boolean, since both shapes are seen in provider responses.
func (a *AccountInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		AccountID   string          `json:"account_id"`
		AccountName string          `json:"account_name"`
		BaseURI     string          `json:"base_uri"`
		IsDefault   json.RawMessage `json:"is_default"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	isDefault, err := parseLooseBool(raw.IsDefault)
	if err != nil {
		return fmt.Errorf("account %q: is_default: %w", raw.AccountID, err)
	}

	*a = AccountInfo{
		AccountID:   raw.AccountID,
		AccountName: raw.AccountName,
		BaseURI:     raw.BaseURI,
		IsDefault:   isDefault,
	}
	return nil
}

func parseLooseBool(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, fmt.Errorf("unexpected value %s", raw)
	}
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// UserInfo is the body of the identity provider's user-info endpoint.
type UserInfo struct {
	Subject  string        `json:"sub"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Accounts []AccountInfo `json:"accounts"`
}
