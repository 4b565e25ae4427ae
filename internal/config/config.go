package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	OAuthConfig
	ESignConfig
	SecurityConfig

	// Warnings lists settings still holding their documented placeholder.
	Warnings() []string
	// Validate fails when a setting the service cannot start without is missing.
	Validate() error
}

type EnvConfig interface {
	GetHost() string
	GetPort() string
	GetAddr() string
	GetBaseURL() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type ESignConfig interface {
	GetSignerEmail() string
	GetSignerName() string
	GetTemplateID() string
	GetTemplateRole() string
	GetDocumentPath() string
	GetDownloadDir() string
	GetStatusFromDate() time.Time
}

type mainConfig struct {
	EnvVars
	OAuth
	Security
}

// New loads an optional .env file and then parses the process environment.
func New(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	var vars EnvVars
	if err := env.Parse(&vars); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	return mainConfig{
		EnvVars:  vars,
		OAuth:    OAuth{vars: &vars},
		Security: Security{vars: &vars},
	}, nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// godotenv never overrides variables already present in the environment
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("[config New] load %s: %w", f, err)
		}
	}
	return nil
}

func (c mainConfig) Warnings() []string {
	var warnings []string
	for _, p := range c.placeholders() {
		if p.value == p.placeholder {
			warnings = append(warnings, fmt.Sprintf("%s is not set (still %q)", p.name, p.placeholder))
		}
	}
	if _, ok, err := c.parseStatusFromDate(); ok && err != nil {
		warnings = append(warnings, fmt.Sprintf("%s %q is not a YYYY-MM-DD date, using thirty days ago", statusFromVar, c.StatusFromDate))
	}
	return warnings
}

func (c mainConfig) Validate() error {
	if c.ClientID == "" || c.ClientID == PlaceholderClientID {
		return fmt.Errorf("%s must be set to the integration key of your application: %w", clientIDVar, ErrPlaceholderClientID)
	}
	if len(c.GetScopes()) == 0 {
		return fmt.Errorf("%s must name at least one scope: %w", scopesVar, ErrMissingScopes)
	}
	if _, err := parseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("%s: %w", trustedProxyVar, err)
	}
	return nil
}

var (
	ErrPlaceholderClientID = errors.New("client id is a placeholder")
	ErrMissingScopes       = errors.New("no scopes configured")
)

type placeholder struct {
	name        string
	value       string
	placeholder string
}

func (c mainConfig) placeholders() []placeholder {
	return []placeholder{
		{clientIDVar, c.ClientID, PlaceholderClientID},
		{clientSecretVar, c.ClientSecret, PlaceholderClientSecret},
		{signerEmailVar, c.SignerEmail, PlaceholderSignerEmail},
		{signerNameVar, c.SignerName, PlaceholderSignerName},
		{templateIDVar, c.TemplateID, PlaceholderTemplateID},
		{templateRoleVar, c.TemplateRole, PlaceholderTemplateRole},
	}
}
