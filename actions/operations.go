package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/go-esign-auth/esign"
	"github.com/jrsteele09/go-esign-auth/internal/config"
	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// embeddedClientUserID ties the embedded signer on the envelope to the
	// recipient view request.
	embeddedClientUserID = "1001"

	viewAuthenticationNone = "none"

	defaultDownloadLimit = 4
)

// examples holds the nine example operations and what they share.
type examples struct {
	settings      Settings
	newClient     ClientFactory
	downloadLimit int
}

func newExamples(settings Settings, opts ...RegistryOption) *examples {
	e := &examples{
		settings: settings,
		newClient: func(ctx context.Context, api oauthmodel.APIContext) (*esign.Client, error) {
			return esign.NewClient(ctx, api)
		},
		downloadLimit: defaultDownloadLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithClientFactory replaces how API clients are built.
func WithClientFactory(f ClientFactory) RegistryOption {
	return func(e *examples) {
		if f != nil {
			e.newClient = f
		}
	}
}

func (e *examples) client(ctx context.Context, api oauthmodel.APIContext) (*esign.Client, error) {
	c, err := e.newClient(ctx, api)
	if err != nil {
		return nil, fmt.Errorf("[examples client] %w", err)
	}
	return c, nil
}

func (e *examples) readDocument() (string, []byte, error) {
	content, err := os.ReadFile(e.settings.DocumentPath)
	if err != nil {
		return "", nil, fmt.Errorf("[examples readDocument] reading %s: %w", e.settings.DocumentPath, err)
	}
	return filepath.Base(e.settings.DocumentPath), content, nil
}

// documentEnvelope builds an envelope holding the demo document for the configured signer.
func (e *examples) documentEnvelope(draft bool, opts ...esign.SignerOption) (esign.EnvelopeDefinition, error) {
	name, content, err := e.readDocument()
	if err != nil {
		return esign.EnvelopeDefinition{}, err
	}
	b := esign.NewEnvelope("").
		AddDocument(name, content).
		AddSigner(e.settings.Signer, opts...)
	if draft {
		b = b.AsDraft()
	}
	return b.Build()
}

func (e *examples) sendEnvelope(ctx context.Context, api oauthmodel.APIContext, _ Params) (Result, error) {
	def, err := e.documentEnvelope(false, esign.SignHereAnchored(esign.SignHereAnchor, 20, 10))
	if err != nil {
		return Result{}, fmt.Errorf("[sendEnvelope] %w", err)
	}
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	summary, err := c.CreateEnvelope(ctx, def)
	if err != nil {
		return Result{}, fmt.Errorf("[sendEnvelope] %w", err)
	}
	return Result{
		Message:    fmt.Sprintf("Envelope %s was sent to %s.", summary.EnvelopeID, e.settings.Signer.Email),
		Details:    summary,
		EnvelopeID: summary.EnvelopeID,
	}, nil
}

func (e *examples) embeddedSigning(ctx context.Context, api oauthmodel.APIContext, _ Params) (Result, error) {
	def, err := e.documentEnvelope(false,
		esign.Embedded(embeddedClientUserID),
		esign.SignHereAnchored(esign.SignHereAnchor, 20, 10),
	)
	if err != nil {
		return Result{}, fmt.Errorf("[embeddedSigning] %w", err)
	}
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	summary, err := c.CreateEnvelope(ctx, def)
	if err != nil {
		return Result{}, fmt.Errorf("[embeddedSigning] %w", err)
	}
	view, err := c.CreateRecipientView(ctx, summary.EnvelopeID, esign.RecipientViewRequest{
		ReturnURL:            e.settings.ReturnURL,
		AuthenticationMethod: viewAuthenticationNone,
		Email:                e.settings.Signer.Email,
		UserName:             e.settings.Signer.Name,
		ClientUserID:         embeddedClientUserID,
	})
	if err != nil {
		return Result{}, fmt.Errorf("[embeddedSigning] %w", err)
	}
	return Result{RedirectURL: view.URL, EnvelopeID: summary.EnvelopeID}, nil
}

func (e *examples) fromTemplate(ctx context.Context, api oauthmodel.APIContext, _ Params) (Result, error) {
	if e.settings.TemplateID == "" || e.settings.TemplateID == config.PlaceholderTemplateID {
		return Result{}, fmt.Errorf("[fromTemplate] %w: set TEMPLATE_ID to a template in your account", ErrNotConfigured)
	}
	if e.settings.TemplateRole == "" || e.settings.TemplateRole == config.PlaceholderTemplateRole {
		return Result{}, fmt.Errorf("[fromTemplate] %w: set TEMPLATE_ROLE to a role of the template", ErrNotConfigured)
	}

	def, err := esign.NewEnvelope("").
		FromTemplate(e.settings.TemplateID, esign.TemplateRole{
			RoleName: e.settings.TemplateRole,
			Name:     e.settings.Signer.Name,
			Email:    e.settings.Signer.Email,
		}).
		Build()
	if err != nil {
		return Result{}, fmt.Errorf("[fromTemplate] %w", err)
	}
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	summary, err := c.CreateEnvelope(ctx, def)
	if err != nil {
		return Result{}, fmt.Errorf("[fromTemplate] %w", err)
	}
	return Result{
		Message:    fmt.Sprintf("Envelope %s was sent from template %s.", summary.EnvelopeID, e.settings.TemplateID),
		Details:    summary,
		EnvelopeID: summary.EnvelopeID,
	}, nil
}

func (e *examples) embeddedSending(ctx context.Context, api oauthmodel.APIContext, _ Params) (Result, error) {
	def, err := e.documentEnvelope(true, esign.SignHereAt("1", 1, 100, 150))
	if err != nil {
		return Result{}, fmt.Errorf("[embeddedSending] %w", err)
	}
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	summary, err := c.CreateEnvelope(ctx, def)
	if err != nil {
		return Result{}, fmt.Errorf("[embeddedSending] %w", err)
	}
	view, err := c.CreateSenderView(ctx, summary.EnvelopeID, esign.ReturnURLRequest{ReturnURL: e.settings.ReturnURL})
	if err != nil {
		return Result{}, fmt.Errorf("[embeddedSending] %w", err)
	}
	return Result{RedirectURL: senderViewPrepareURL(view.URL), EnvelopeID: summary.EnvelopeID}, nil
}

// senderViewPrepareURL opens the sender view on its prepare page instead of
// its send page.
func senderViewPrepareURL(raw string) string {
	return strings.Replace(raw, "send=1", "send=0", 1)
}

func (e *examples) consoleView(ctx context.Context, api oauthmodel.APIContext, _ Params) (Result, error) {
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	view, err := c.CreateConsoleView(ctx, esign.ConsoleViewRequest{ReturnURL: e.settings.ReturnURL})
	if err != nil {
		return Result{}, fmt.Errorf("[consoleView] %w", err)
	}
	return Result{RedirectURL: view.URL}, nil
}

func (e *examples) listStatuses(ctx context.Context, api oauthmodel.APIContext, _ Params) (Result, error) {
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	from := e.statusFromDate()
	info, err := c.ListStatusChanges(ctx, from)
	if err != nil {
		return Result{}, fmt.Errorf("[listStatuses] %w", err)
	}
	return Result{
		Message: fmt.Sprintf("%d envelope(s) changed status since %s.", len(info.Envelopes), from.Format("2006-01-02")),
		Details: info,
	}, nil
}

func (e *examples) statusFromDate() time.Time {
	if e.settings.StatusFromDate == nil {
		return time.Now().UTC().AddDate(0, 0, -30).Truncate(24 * time.Hour)
	}
	return e.settings.StatusFromDate()
}

func (e *examples) getStatus(ctx context.Context, api oauthmodel.APIContext, params Params) (Result, error) {
	envelopeID, err := requireEnvelope(params)
	if err != nil {
		return Result{}, fmt.Errorf("[getStatus] %w", err)
	}
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	env, err := c.GetEnvelope(ctx, envelopeID)
	if err != nil {
		return Result{}, fmt.Errorf("[getStatus] %w", err)
	}
	return Result{
		Message:    fmt.Sprintf("Envelope %s is %s.", env.EnvelopeID, env.Status),
		Details:    env,
		EnvelopeID: envelopeID,
	}, nil
}

func (e *examples) listRecipients(ctx context.Context, api oauthmodel.APIContext, params Params) (Result, error) {
	envelopeID, err := requireEnvelope(params)
	if err != nil {
		return Result{}, fmt.Errorf("[listRecipients] %w", err)
	}
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	recipients, err := c.ListRecipients(ctx, envelopeID)
	if err != nil {
		return Result{}, fmt.Errorf("[listRecipients] %w", err)
	}
	return Result{
		Message:    fmt.Sprintf("Envelope %s has %d signer(s).", envelopeID, len(recipients.Signers)),
		Details:    recipients,
		EnvelopeID: envelopeID,
	}, nil
}

// DownloadedDocument is one file written by the download action.
type DownloadedDocument struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Bytes      int    `json:"bytes"`
}

func (e *examples) downloadDocuments(ctx context.Context, api oauthmodel.APIContext, params Params) (Result, error) {
	envelopeID, err := requireEnvelope(params)
	if err != nil {
		return Result{}, fmt.Errorf("[downloadDocuments] %w", err)
	}
	c, err := e.client(ctx, api)
	if err != nil {
		return Result{}, err
	}
	list, err := c.ListDocuments(ctx, envelopeID)
	if err != nil {
		return Result{}, fmt.Errorf("[downloadDocuments] %w", err)
	}
	if err := os.MkdirAll(e.settings.DownloadDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("[downloadDocuments] creating %s: %w", e.settings.DownloadDir, err)
	}

	logger := zerolog.Ctx(ctx)
	saved := make([]DownloadedDocument, len(list.EnvelopeDocuments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.downloadLimit)
	for i, doc := range list.EnvelopeDocuments {
		g.Go(func() error {
			content, err := c.GetDocument(gctx, envelopeID, doc.DocumentID)
			if err != nil {
				return fmt.Errorf("document %s: %w", doc.DocumentID, err)
			}
			path := filepath.Join(e.settings.DownloadDir, downloadFileName(envelopeID, doc.DocumentID))
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			logger.Debug().Str("document_id", doc.DocumentID).Str("path", path).Msg("document saved")

			saved[i] = DownloadedDocument{DocumentID: doc.DocumentID, Name: doc.Name, Path: path, Bytes: len(content)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("[downloadDocuments] %w", err)
	}

	return Result{
		Message:    fmt.Sprintf("Saved %d document(s) of envelope %s to %s.", len(saved), envelopeID, e.settings.DownloadDir),
		Details:    saved,
		EnvelopeID: envelopeID,
	}, nil
}

// downloadFileName names the file a document is saved to. Every document is
// requested as PDF, including the certificate of completion.
func downloadFileName(envelopeID, documentID string) string {
	return fmt.Sprintf("%s_%s.pdf", sanitizeFileComponent(envelopeID), sanitizeFileComponent(documentID))
}

func sanitizeFileComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.ReplaceAll(s, "..", "_"))
}

func requireEnvelope(params Params) (string, error) {
	id := strings.TrimSpace(params.EnvelopeID())
	if id == "" {
		return "", ErrEnvelopeRequired
	}
	return id, nil
}
