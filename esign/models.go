package esign

// Wire models of the e-signature REST API v2.1. Numeric positions are sent as
// strings, the way the API documents them.

// Envelope statuses used when creating an envelope.
const (
	StatusSent    = "sent"
	StatusCreated = "created" // draft
)

// EnvelopeDefinition is the body of POST /envelopes.
type EnvelopeDefinition struct {
	EmailSubject  string         `json:"emailSubject,omitempty"`
	Status        string         `json:"status,omitempty"`
	Documents     []Document     `json:"documents,omitempty"`
	Recipients    *Recipients    `json:"recipients,omitempty"`
	TemplateID    string         `json:"templateId,omitempty"`
	TemplateRoles []TemplateRole `json:"templateRoles,omitempty"`
}

type Document struct {
	DocumentID     string `json:"documentId"`
	Name           string `json:"name"`
	FileExtension  string `json:"fileExtension,omitempty"`
	DocumentBase64 string `json:"documentBase64,omitempty"`
}

type Recipients struct {
	Signers []Signer `json:"signers,omitempty"`
}

type Signer struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RecipientID  string `json:"recipientId"`
	RoutingOrder string `json:"routingOrder,omitempty"`
	ClientUserID string `json:"clientUserId,omitempty"` // set for embedded recipients
	Status       string `json:"status,omitempty"`
	Tabs         *Tabs  `json:"tabs,omitempty"`
}

type Tabs struct {
	SignHereTabs []SignHere `json:"signHereTabs,omitempty"`
}

// SignHere is either anchored to a text string in the document or placed at
// an absolute position on a page.
type SignHere struct {
	AnchorString  string `json:"anchorString,omitempty"`
	AnchorXOffset string `json:"anchorXOffset,omitempty"`
	AnchorYOffset string `json:"anchorYOffset,omitempty"`
	AnchorUnits   string `json:"anchorUnits,omitempty"`

	DocumentID  string `json:"documentId,omitempty"`
	PageNumber  string `json:"pageNumber,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	XPosition   string `json:"xPosition,omitempty"`
	YPosition   string `json:"yPosition,omitempty"`
}

type TemplateRole struct {
	RoleName     string `json:"roleName"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ClientUserID string `json:"clientUserId,omitempty"`
}

// EnvelopeSummary is returned when an envelope is created.
type EnvelopeSummary struct {
	EnvelopeID     string `json:"envelopeId"`
	Status         string `json:"status"`
	StatusDateTime string `json:"statusDateTime,omitempty"`
	URI            string `json:"uri,omitempty"`
}

// RecipientViewRequest asks for an embedded signing URL. The recipient fields
// must match the embedded signer on the envelope.
type RecipientViewRequest struct {
	ReturnURL            string `json:"returnUrl"`
	AuthenticationMethod string `json:"authenticationMethod"`
	Email                string `json:"email"`
	UserName             string `json:"userName"`
	ClientUserID         string `json:"clientUserId"`
}

type ReturnURLRequest struct {
	ReturnURL string `json:"returnUrl"`
}

type ConsoleViewRequest struct {
	ReturnURL  string `json:"returnUrl"`
	EnvelopeID string `json:"envelopeId,omitempty"`
}

// ViewURL is the response of every views endpoint.
type ViewURL struct {
	URL string `json:"url"`
}

// Envelope is the status view of a single envelope.
type Envelope struct {
	EnvelopeID            string `json:"envelopeId"`
	Status                string `json:"status"`
	EmailSubject          string `json:"emailSubject,omitempty"`
	CreatedDateTime       string `json:"createdDateTime,omitempty"`
	SentDateTime          string `json:"sentDateTime,omitempty"`
	CompletedDateTime     string `json:"completedDateTime,omitempty"`
	StatusChangedDateTime string `json:"statusChangedDateTime,omitempty"`
}

// EnvelopesInformation is the result of listing status changes.
type EnvelopesInformation struct {
	ResultSetSize string     `json:"resultSetSize"`
	TotalSetSize  string     `json:"totalSetSize,omitempty"`
	Envelopes     []Envelope `json:"envelopes"`
}

// EnvelopeRecipients lists an envelope's recipients by type.
type EnvelopeRecipients struct {
	Signers        []Signer `json:"signers"`
	RecipientCount string   `json:"recipientCount,omitempty"`
}

type EnvelopeDocument struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	URI        string `json:"uri,omitempty"`
}

type EnvelopeDocumentsResult struct {
	EnvelopeID        string             `json:"envelopeId"`
	EnvelopeDocuments []EnvelopeDocument `json:"envelopeDocuments"`
}
