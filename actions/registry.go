package actions

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/jrsteele09/go-esign-auth/esign"
	"github.com/jrsteele09/go-esign-auth/internal/config"
	apperrors "github.com/jrsteele09/go-esign-auth/internal/errors"
	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/rs/zerolog"
)

// ParamEnvelopeID is the action parameter naming an existing envelope.
const ParamEnvelopeID = "envelope_id"

// Params are the extra parameters an action was requested with.
type Params map[string]string

// EnvelopeID returns the envelope_id parameter.
func (p Params) EnvelopeID() string {
	return p[ParamEnvelopeID]
}

// WithDefault returns a copy of p where key is set to value unless p already has it.
func (p Params) WithDefault(key, value string) Params {
	out := Params(maps.Clone(map[string]string(p)))
	if out == nil {
		out = Params{}
	}
	if out[key] == "" && value != "" {
		out[key] = value
	}
	return out
}

// Result is what an action produced: a message to show, or a URL to send
// the browser to.
type Result struct {
	Message     string
	RedirectURL string
	// Details is rendered as JSON under the message.
	Details any
	// EnvelopeID is the envelope the action created, if any.
	EnvelopeID string
}

// Operation runs one action against the e-signature API.
type Operation interface {
	Execute(ctx context.Context, api oauthmodel.APIContext, params Params) (Result, error)
}

// OperationFunc adapts a function to Operation.
type OperationFunc func(ctx context.Context, api oauthmodel.APIContext, params Params) (Result, error)

func (f OperationFunc) Execute(ctx context.Context, api oauthmodel.APIContext, params Params) (Result, error) {
	return f(ctx, api, params)
}

// Settings are the values the example operations need besides the API context.
type Settings struct {
	Signer         esign.Party
	TemplateID     string
	TemplateRole   string
	DocumentPath   string
	DownloadDir    string
	// StatusFromDate is called on every status listing, so a relative default
	// such as "thirty days ago" moves with the clock.
	StatusFromDate func() time.Time
	// ReturnURL is where embedded views send the browser when they finish.
	ReturnURL string
}

// Config is the part of the service configuration actions read.
type Config interface {
	config.ESignConfig
	GetBaseURL() string
}

// SettingsFromConfig reads Settings from the service configuration.
func SettingsFromConfig(cfg Config) Settings {
	return Settings{
		Signer:         esign.Party{Email: cfg.GetSignerEmail(), Name: cfg.GetSignerName()},
		TemplateID:     cfg.GetTemplateID(),
		TemplateRole:   cfg.GetTemplateRole(),
		DocumentPath:   cfg.GetDocumentPath(),
		DownloadDir:    cfg.GetDownloadDir(),
		StatusFromDate: cfg.GetStatusFromDate,
		ReturnURL:      cfg.GetBaseURL() + "/",
	}
}

// ClientFactory builds the API client for one call. Each call gets a client
// bound to the caller's own API context.
type ClientFactory func(ctx context.Context, api oauthmodel.APIContext) (*esign.Client, error)

// Registry maps action ids to operations.
type Registry struct {
	ops map[ActionID]Operation
}

// RegistryOption configures the example operations.
type RegistryOption func(*examples)

// WithHTTPClient sets the base client the API clients send requests with.
func WithHTTPClient(c *http.Client) RegistryOption {
	return func(e *examples) {
		e.newClient = func(ctx context.Context, api oauthmodel.APIContext) (*esign.Client, error) {
			return esign.NewClient(ctx, api, esign.WithBaseHTTPClient(c))
		}
	}
}

// WithDownloadConcurrency bounds parallel document downloads.
func WithDownloadConcurrency(n int) RegistryOption {
	return func(e *examples) {
		if n > 0 {
			e.downloadLimit = n
		}
	}
}

// NewRegistry returns a registry holding the nine example operations.
func NewRegistry(settings Settings, opts ...RegistryOption) *Registry {
	ex := newExamples(settings, opts...)

	r := &Registry{ops: make(map[ActionID]Operation)}
	r.Register(SendEnvelope, OperationFunc(ex.sendEnvelope))
	r.Register(EmbeddedSigning, OperationFunc(ex.embeddedSigning))
	r.Register(FromTemplate, OperationFunc(ex.fromTemplate))
	r.Register(EmbeddedSending, OperationFunc(ex.embeddedSending))
	r.Register(ConsoleView, OperationFunc(ex.consoleView))
	r.Register(ListStatuses, OperationFunc(ex.listStatuses))
	r.Register(GetStatus, OperationFunc(ex.getStatus))
	r.Register(ListRecipients, OperationFunc(ex.listRecipients))
	r.Register(DownloadDocuments, OperationFunc(ex.downloadDocuments))
	return r
}

// Register adds or replaces the operation for id.
func (r *Registry) Register(id ActionID, op Operation) {
	r.ops[id] = op
}

// Lookup returns the operation registered for id.
func (r *Registry) Lookup(id ActionID) (Operation, bool) {
	op, ok := r.ops[id]
	return op, ok
}

// Dispatch runs the action id with the caller's API context. Failures of the
// API or of local files come back as *OperationError (ErrOperationFailed);
// a missing envelope id or an unconfigured action is returned as is.
func (r *Registry) Dispatch(ctx context.Context, id ActionID, api oauthmodel.APIContext, params Params) (Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("action", string(id)).Logger()

	op, ok := r.Lookup(id)
	if !ok {
		return Result{}, fmt.Errorf("[Registry Dispatch] %w: %q", apperrors.ErrUnknownAction, id)
	}
	if err := api.Validate(); err != nil {
		return Result{}, fmt.Errorf("[Registry Dispatch] %w", err)
	}

	start := time.Now()
	result, err := op.Execute(ctx, api, params)
	if err != nil {
		logger.Error().Err(err).Msg("action failed")
		if errors.Is(err, ErrEnvelopeRequired) || errors.Is(err, ErrNotConfigured) {
			return Result{}, fmt.Errorf("[Registry Dispatch] %s: %w", id, err)
		}
		return Result{}, &OperationError{Action: id, Err: err}
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Str("envelope_id", result.EnvelopeID).
		Bool("redirect", result.RedirectURL != "").
		Msg("action completed")
	return result, nil
}
