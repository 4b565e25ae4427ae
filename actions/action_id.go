package actions

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-esign-auth/internal/errors"
)

// ActionID names one of the example operations the user can run after signing in.
type ActionID string

const (
	SendEnvelope      ActionID = "sendEnvelope"
	EmbeddedSigning   ActionID = "embeddedSigning"
	FromTemplate      ActionID = "fromTemplate"
	EmbeddedSending   ActionID = "embeddedSending"
	ConsoleView       ActionID = "consoleView"
	ListStatuses      ActionID = "listStatuses"
	GetStatus         ActionID = "getStatus"
	ListRecipients    ActionID = "listRecipients"
	DownloadDocuments ActionID = "downloadDocuments"

	// DefaultAction runs when /auth is called without an action.
	DefaultAction = SendEnvelope
)

// Descriptor is the catalogue entry of an action, used by the index page.
type Descriptor struct {
	ID    ActionID
	Alias string // numeric alias, e.g. "1"
	Title string
	// NeedsEnvelope is set for actions that read an existing envelope.
	NeedsEnvelope bool
}

var catalogue = []Descriptor{
	{SendEnvelope, "1", "Send an envelope via email", false},
	{EmbeddedSigning, "2", "Embedded signing ceremony", false},
	{FromTemplate, "3", "Send an envelope using a template", false},
	{EmbeddedSending, "4", "Embedded sending", false},
	{ConsoleView, "5", "Embedded web console", false},
	{ListStatuses, "6", "List multiple envelopes' status", false},
	{GetStatus, "7", "Get an envelope's status", true},
	{ListRecipients, "8", "List an envelope's recipients", true},
	{DownloadDocuments, "9", "Download an envelope's documents", true},
}

// Catalogue returns every action in menu order.
func Catalogue() []Descriptor {
	out := make([]Descriptor, len(catalogue))
	copy(out, catalogue)
	return out
}

// Describe returns the catalogue entry for id.
func (id ActionID) Describe() (Descriptor, bool) {
	for _, d := range catalogue {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ParseActionID accepts a canonical id (case-insensitive) or its numeric
// alias. An empty value selects DefaultAction.
func ParseActionID(raw string) (ActionID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultAction, nil
	}
	for _, d := range catalogue {
		if raw == d.Alias || strings.EqualFold(raw, string(d.ID)) {
			return d.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownAction, raw)
}
