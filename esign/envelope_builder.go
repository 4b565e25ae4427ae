package esign

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults shared by the example envelopes.
const (
	DefaultEmailSubject = "Please sign this document sent from the Go sample"

	// SignHereAnchor is the white-on-white text in the demo document that the
	// anchored sign-here tab is placed on.
	SignHereAnchor = "/sn1/"

	anchorUnitsPixels = "pixels"
)

var (
	ErrNoContent    = errors.New("envelope needs at least one document or a template")
	ErrNoRecipients = errors.New("envelope with documents needs at least one signer")
	ErrMixedContent = errors.New("envelope cannot combine documents with a server template")
	ErrNoRoleName   = errors.New("template role needs a role name")
)

// Party identifies a person taking part in an envelope.
type Party struct {
	Email string
	Name  string
}

// SignerOption adjusts a signer added with EnvelopeBuilder.AddSigner.
type SignerOption func(*Signer)

// Embedded marks the signer as an embedded recipient. No email is sent and
// the signing ceremony is opened with a recipient view for clientUserID.
func Embedded(clientUserID string) SignerOption {
	return func(s *Signer) {
		s.ClientUserID = clientUserID
	}
}

// SignHereAnchored places a sign-here tab at an offset from anchor text, in pixels.
func SignHereAnchored(anchor string, xOffset, yOffset int) SignerOption {
	return func(s *Signer) {
		addSignHere(s, SignHere{
			AnchorString:  anchor,
			AnchorXOffset: strconv.Itoa(xOffset),
			AnchorYOffset: strconv.Itoa(yOffset),
			AnchorUnits:   anchorUnitsPixels,
		})
	}
}

// SignHereAt places a sign-here tab at an absolute position on a page.
func SignHereAt(documentID string, page, x, y int) SignerOption {
	return func(s *Signer) {
		addSignHere(s, SignHere{
			DocumentID:  documentID,
			PageNumber:  strconv.Itoa(page),
			RecipientID: s.RecipientID,
			XPosition:   strconv.Itoa(x),
			YPosition:   strconv.Itoa(y),
		})
	}
}

func addSignHere(s *Signer, tab SignHere) {
	if s.Tabs == nil {
		s.Tabs = &Tabs{}
	}
	s.Tabs.SignHereTabs = append(s.Tabs.SignHereTabs, tab)
}

// EnvelopeBuilder assembles an EnvelopeDefinition. Document and recipient
// ids are assigned in the order things are added, starting at "1".
type EnvelopeBuilder struct {
	def EnvelopeDefinition
	err error
}

// NewEnvelope starts an envelope with the given email subject. An empty
// subject uses DefaultEmailSubject. The envelope is sent unless AsDraft is called.
func NewEnvelope(subject string) *EnvelopeBuilder {
	if subject == "" {
		subject = DefaultEmailSubject
	}
	return &EnvelopeBuilder{def: EnvelopeDefinition{
		EmailSubject: subject,
		Status:       StatusSent,
	}}
}

// AddDocument attaches content under name. The file extension is taken from name.
func (b *EnvelopeBuilder) AddDocument(name string, content []byte) *EnvelopeBuilder {
	if b.err != nil {
		return b
	}
	if len(content) == 0 {
		b.err = errors.New("document " + name + " is empty")
		return b
	}
	b.def.Documents = append(b.def.Documents, Document{
		DocumentID:     strconv.Itoa(len(b.def.Documents) + 1),
		Name:           name,
		FileExtension:  strings.TrimPrefix(filepath.Ext(name), "."),
		DocumentBase64: base64.StdEncoding.EncodeToString(content),
	})
	return b
}

// AddSigner adds a signer routed after the signers already added.
func (b *EnvelopeBuilder) AddSigner(p Party, opts ...SignerOption) *EnvelopeBuilder {
	if b.err != nil {
		return b
	}
	if b.def.Recipients == nil {
		b.def.Recipients = &Recipients{}
	}
	n := strconv.Itoa(len(b.def.Recipients.Signers) + 1)
	s := Signer{
		Email:        p.Email,
		Name:         p.Name,
		RecipientID:  n,
		RoutingOrder: n,
	}
	for _, opt := range opts {
		opt(&s)
	}
	b.def.Recipients.Signers = append(b.def.Recipients.Signers, s)
	return b
}

// FromTemplate uses a server-side template instead of documents.
func (b *EnvelopeBuilder) FromTemplate(templateID string, roles ...TemplateRole) *EnvelopeBuilder {
	if b.err != nil {
		return b
	}
	if templateID == "" {
		b.err = errors.New("template id is required")
		return b
	}
	for _, r := range roles {
		if r.RoleName == "" {
			b.err = ErrNoRoleName
			return b
		}
	}
	b.def.TemplateID = templateID
	b.def.TemplateRoles = append(b.def.TemplateRoles, roles...)
	return b
}

// AsDraft saves the envelope instead of sending it.
func (b *EnvelopeBuilder) AsDraft() *EnvelopeBuilder {
	b.def.Status = StatusCreated
	return b
}

// Build returns the definition or the first error met while building it.
func (b *EnvelopeBuilder) Build() (EnvelopeDefinition, error) {
	if b.err != nil {
		return EnvelopeDefinition{}, b.err
	}

	hasDocs := len(b.def.Documents) > 0
	hasTemplate := b.def.TemplateID != ""
	switch {
	case hasDocs && hasTemplate:
		return EnvelopeDefinition{}, ErrMixedContent
	case !hasDocs && !hasTemplate:
		return EnvelopeDefinition{}, ErrNoContent
	case hasDocs && (b.def.Recipients == nil || len(b.def.Recipients.Signers) == 0):
		return EnvelopeDefinition{}, ErrNoRecipients
	}
	return b.def, nil
}
