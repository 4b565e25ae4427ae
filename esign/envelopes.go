package esign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxDocumentSize bounds a single downloaded document.
const maxDocumentSize = 25 << 20

var errEnvelopeIDRequired = errors.New("envelope id is required")

// CreateEnvelope creates an envelope from def. With status "sent" it is sent
// immediately, with "created" it is saved as a draft.
func (c *Client) CreateEnvelope(ctx context.Context, def EnvelopeDefinition) (EnvelopeSummary, error) {
	var summary EnvelopeSummary
	if err := c.doJSON(ctx, http.MethodPost, "/envelopes", nil, def, &summary); err != nil {
		return EnvelopeSummary{}, fmt.Errorf("[esign CreateEnvelope] %w", err)
	}
	return summary, nil
}

// CreateRecipientView returns the URL of an embedded signing ceremony.
func (c *Client) CreateRecipientView(ctx context.Context, envelopeID string, req RecipientViewRequest) (ViewURL, error) {
	if envelopeID == "" {
		return ViewURL{}, fmt.Errorf("[esign CreateRecipientView] %w", errEnvelopeIDRequired)
	}
	var view ViewURL
	if err := c.doJSON(ctx, http.MethodPost, envelopePath(envelopeID, "/views/recipient"), nil, req, &view); err != nil {
		return ViewURL{}, fmt.Errorf("[esign CreateRecipientView] %w", err)
	}
	return view, nil
}

// CreateSenderView returns the URL of the sending tool for a draft envelope.
func (c *Client) CreateSenderView(ctx context.Context, envelopeID string, req ReturnURLRequest) (ViewURL, error) {
	if envelopeID == "" {
		return ViewURL{}, fmt.Errorf("[esign CreateSenderView] %w", errEnvelopeIDRequired)
	}
	var view ViewURL
	if err := c.doJSON(ctx, http.MethodPost, envelopePath(envelopeID, "/views/sender"), nil, req, &view); err != nil {
		return ViewURL{}, fmt.Errorf("[esign CreateSenderView] %w", err)
	}
	return view, nil
}

// CreateConsoleView returns the URL of the account's web console.
func (c *Client) CreateConsoleView(ctx context.Context, req ConsoleViewRequest) (ViewURL, error) {
	var view ViewURL
	if err := c.doJSON(ctx, http.MethodPost, "/views/console", nil, req, &view); err != nil {
		return ViewURL{}, fmt.Errorf("[esign CreateConsoleView] %w", err)
	}
	return view, nil
}

// ListStatusChanges lists envelopes whose status changed since from.
func (c *Client) ListStatusChanges(ctx context.Context, from time.Time) (EnvelopesInformation, error) {
	query := url.Values{"from_date": {from.UTC().Format(time.DateOnly)}}
	var info EnvelopesInformation
	if err := c.doJSON(ctx, http.MethodGet, "/envelopes", query, nil, &info); err != nil {
		return EnvelopesInformation{}, fmt.Errorf("[esign ListStatusChanges] %w", err)
	}
	return info, nil
}

// GetEnvelope returns one envelope's status.
func (c *Client) GetEnvelope(ctx context.Context, envelopeID string) (Envelope, error) {
	if envelopeID == "" {
		return Envelope{}, fmt.Errorf("[esign GetEnvelope] %w", errEnvelopeIDRequired)
	}
	var env Envelope
	if err := c.doJSON(ctx, http.MethodGet, envelopePath(envelopeID, ""), nil, nil, &env); err != nil {
		return Envelope{}, fmt.Errorf("[esign GetEnvelope] %w", err)
	}
	return env, nil
}

// ListRecipients returns an envelope's recipients.
func (c *Client) ListRecipients(ctx context.Context, envelopeID string) (EnvelopeRecipients, error) {
	if envelopeID == "" {
		return EnvelopeRecipients{}, fmt.Errorf("[esign ListRecipients] %w", errEnvelopeIDRequired)
	}
	var recipients EnvelopeRecipients
	if err := c.doJSON(ctx, http.MethodGet, envelopePath(envelopeID, "/recipients"), nil, nil, &recipients); err != nil {
		return EnvelopeRecipients{}, fmt.Errorf("[esign ListRecipients] %w", err)
	}
	return recipients, nil
}

// ListDocuments returns the documents of an envelope.
func (c *Client) ListDocuments(ctx context.Context, envelopeID string) (EnvelopeDocumentsResult, error) {
	if envelopeID == "" {
		return EnvelopeDocumentsResult{}, fmt.Errorf("[esign ListDocuments] %w", errEnvelopeIDRequired)
	}
	var docs EnvelopeDocumentsResult
	if err := c.doJSON(ctx, http.MethodGet, envelopePath(envelopeID, "/documents"), nil, nil, &docs); err != nil {
		return EnvelopeDocumentsResult{}, fmt.Errorf("[esign ListDocuments] %w", err)
	}
	return docs, nil
}

// GetDocument downloads one document of an envelope as PDF bytes.
func (c *Client) GetDocument(ctx context.Context, envelopeID, documentID string) ([]byte, error) {
	if envelopeID == "" {
		return nil, fmt.Errorf("[esign GetDocument] %w", errEnvelopeIDRequired)
	}
	if documentID == "" {
		return nil, errors.New("[esign GetDocument] document id is required")
	}

	resp, err := c.doRequest(ctx, http.MethodGet, envelopePath(envelopeID, "/documents/"+url.PathEscape(documentID)), nil, nil, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("[esign GetDocument] %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("[esign GetDocument] %w", err)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("[esign GetDocument] read body: %w", err)
	}
	return content, nil
}

func envelopePath(envelopeID, suffix string) string {
	return "/envelopes/" + url.PathEscape(envelopeID) + suffix
}
