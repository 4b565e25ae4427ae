package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	clientIDVar     = "CLIENT_ID"
	clientSecretVar = "CLIENT_SECRET"
	signerEmailVar  = "SIGNER_EMAIL"
	signerNameVar   = "SIGNER_NAME"
	templateIDVar   = "TEMPLATE_ID"
	templateRoleVar = "TEMPLATE_ROLE"
	scopesVar       = "SCOPES"
	statusFromVar   = "STATUS_FROM_DATE"
	trustedProxyVar = "TRUSTED_PROXIES"
)

// Documented placeholder defaults. A value left at its placeholder produces a
// startup warning, or an error for the client id.
const (
	PlaceholderClientID     = "{CLIENT_ID}"
	PlaceholderClientSecret = "{CLIENT_SECRET}"
	PlaceholderSignerEmail  = "{USER_EMAIL}"
	PlaceholderSignerName   = "{USER_NAME}"
	PlaceholderTemplateID   = "{TEMPLATE_ID}"
	PlaceholderTemplateRole = "{ROLE}"
)

// EnvVars is the raw environment. Field tags are read by caarlos0/env.
type EnvVars struct {
	ClientID     string `env:"CLIENT_ID" envDefault:"{CLIENT_ID}"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"{CLIENT_SECRET}"`
	SignerEmail  string `env:"SIGNER_EMAIL" envDefault:"{USER_EMAIL}"`
	SignerName   string `env:"SIGNER_NAME" envDefault:"{USER_NAME}"`
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         string `env:"PORT" envDefault:"3000"`
	BaseURL      string `env:"BASE_URL"`

	AuthServer       string        `env:"AUTH_SERVER" envDefault:"https://account-d.docusign.com"`
	OIDCDiscovery    bool          `env:"OIDC_DISCOVERY" envDefault:"false"`
	Scopes           []string      `env:"SCOPES" envDefault:"signature" envSeparator:","`
	AuthStateTimeout time.Duration `env:"AUTH_STATE_TIMEOUT" envDefault:"10m"`
	SessionMaxAge    time.Duration `env:"SESSION_MAX_AGE" envDefault:"8h"`
	RateLimitAuth    int           `env:"RATE_LIMIT_AUTH" envDefault:"20"`
	TrustedProxies   []string      `env:"TRUSTED_PROXIES" envSeparator:","`

	TemplateID     string `env:"TEMPLATE_ID" envDefault:"{TEMPLATE_ID}"`
	TemplateRole   string `env:"TEMPLATE_ROLE" envDefault:"{ROLE}"`
	DocumentPath   string `env:"DOCUMENT_PATH" envDefault:"demo_documents/test.pdf"`
	DownloadDir    string `env:"DOWNLOAD_DIR" envDefault:"downloads"`
	StatusFromDate string `env:"STATUS_FROM_DATE"`

	AppName  string `env:"APP_NAME" envDefault:"E-Sign OAuth Sample"`
	Env      string `env:"ENV" envDefault:"DEV"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

var _ EnvConfig = EnvVars{}
var _ ESignConfig = EnvVars{}

func (e EnvVars) GetHost() string {
	return e.Host
}

func (e EnvVars) GetPort() string {
	return strings.TrimPrefix(e.Port, ":")
}

// GetAddr is the listen address, e.g. "localhost:3000".
func (e EnvVars) GetAddr() string {
	return fmt.Sprintf("%s:%s", e.Host, e.GetPort())
}

// GetBaseURL returns the externally visible URL of this app (e.g. "http://localhost:3000").
// It is used for the OAuth redirect URI and as the return URL of provider-hosted views.
func (e EnvVars) GetBaseURL() string {
	if e.BaseURL != "" {
		return strings.TrimRight(e.BaseURL, "/")
	}
	return "http://" + e.GetAddr()
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetSignerEmail() string {
	return e.SignerEmail
}

func (e EnvVars) GetSignerName() string {
	return e.SignerName
}

func (e EnvVars) GetTemplateID() string {
	return e.TemplateID
}

func (e EnvVars) GetTemplateRole() string {
	return e.TemplateRole
}

func (e EnvVars) GetDocumentPath() string {
	return e.DocumentPath
}

func (e EnvVars) GetDownloadDir() string {
	return e.DownloadDir
}

// GetStatusFromDate parses STATUS_FROM_DATE (YYYY-MM-DD); unset or invalid
// values fall back to thirty days before now.
func (e EnvVars) GetStatusFromDate() time.Time {
	if t, ok, err := e.parseStatusFromDate(); ok && err == nil {
		return t
	}
	return time.Now().UTC().AddDate(0, 0, -30).Truncate(24 * time.Hour)
}

func (e EnvVars) parseStatusFromDate() (time.Time, bool, error) {
	raw := strings.TrimSpace(e.StatusFromDate)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	return t, true, err
}
