package esign_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-esign-auth/esign"
	"github.com/stretchr/testify/require"
)

var (
	testPDF    = []byte("%PDF-1.4 test")
	testSigner = esign.Party{Email: "signer@example.com", Name: "Sam Signer"}
)

func TestEnvelopeBuilder_SendByEmail(t *testing.T) {
	def, err := esign.NewEnvelope("").
		AddDocument("TestFile.pdf", testPDF).
		AddSigner(testSigner, esign.SignHereAnchored(esign.SignHereAnchor, 20, 10)).
		Build()
	require.NoError(t, err)

	require.Equal(t, esign.DefaultEmailSubject, def.EmailSubject)
	require.Equal(t, esign.StatusSent, def.Status)
	require.Equal(t, []esign.Document{{
		DocumentID:     "1",
		Name:           "TestFile.pdf",
		FileExtension:  "pdf",
		DocumentBase64: base64.StdEncoding.EncodeToString(testPDF),
	}}, def.Documents)

	require.Len(t, def.Recipients.Signers, 1)
	signer := def.Recipients.Signers[0]
	require.Equal(t, "1", signer.RecipientID)
	require.Equal(t, "1", signer.RoutingOrder)
	require.Empty(t, signer.ClientUserID)
	require.Equal(t, []esign.SignHere{{
		AnchorString:  "/sn1/",
		AnchorXOffset: "20",
		AnchorYOffset: "10",
		AnchorUnits:   "pixels",
	}}, signer.Tabs.SignHereTabs)
}

func TestEnvelopeBuilder_EmbeddedSigner(t *testing.T) {
	def, err := esign.NewEnvelope("Sign me").
		AddDocument("TestFile.pdf", testPDF).
		AddSigner(testSigner, esign.Embedded("1001"), esign.SignHereAnchored(esign.SignHereAnchor, 20, 10)).
		Build()
	require.NoError(t, err)
	require.Equal(t, "Sign me", def.EmailSubject)
	require.Equal(t, "1001", def.Recipients.Signers[0].ClientUserID)
}

func TestEnvelopeBuilder_DraftWithAbsoluteTab(t *testing.T) {
	def, err := esign.NewEnvelope("").
		AddDocument("TestFile.pdf", testPDF).
		AddSigner(testSigner, esign.SignHereAt("1", 1, 100, 150)).
		AsDraft().
		Build()
	require.NoError(t, err)

	require.Equal(t, esign.StatusCreated, def.Status)
	require.Equal(t, []esign.SignHere{{
		DocumentID:  "1",
		PageNumber:  "1",
		RecipientID: "1",
		XPosition:   "100",
		YPosition:   "150",
	}}, def.Recipients.Signers[0].Tabs.SignHereTabs)
}

func TestEnvelopeBuilder_FromTemplate(t *testing.T) {
	def, err := esign.NewEnvelope("").
		FromTemplate("tmpl-1", esign.TemplateRole{RoleName: "Signer", Name: "Sam Signer", Email: "signer@example.com"}).
		Build()
	require.NoError(t, err)

	require.Equal(t, "tmpl-1", def.TemplateID)
	require.Len(t, def.TemplateRoles, 1)
	require.Nil(t, def.Recipients)
	require.Empty(t, def.Documents)

	raw, err := json.Marshal(def)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"emailSubject": "Please sign this document sent from the Go sample",
		"status": "sent",
		"templateId": "tmpl-1",
		"templateRoles": [{"roleName": "Signer", "name": "Sam Signer", "email": "signer@example.com"}]
	}`, string(raw))
}

func TestEnvelopeBuilder_IDsFollowInsertionOrder(t *testing.T) {
	def, err := esign.NewEnvelope("").
		AddDocument("a.pdf", testPDF).
		AddDocument("b.docx", testPDF).
		AddSigner(testSigner).
		AddSigner(esign.Party{Email: "second@example.com", Name: "Second"}).
		Build()
	require.NoError(t, err)

	require.Equal(t, "2", def.Documents[1].DocumentID)
	require.Equal(t, "docx", def.Documents[1].FileExtension)
	require.Equal(t, "2", def.Recipients.Signers[1].RecipientID)
	require.Equal(t, "2", def.Recipients.Signers[1].RoutingOrder)
}

func TestEnvelopeBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder *esign.EnvelopeBuilder
		wantErr error
		wantMsg string
	}{
		{
			name:    "nothing to send",
			builder: esign.NewEnvelope(""),
			wantErr: esign.ErrNoContent,
		},
		{
			name:    "document without signer",
			builder: esign.NewEnvelope("").AddDocument("TestFile.pdf", testPDF),
			wantErr: esign.ErrNoRecipients,
		},
		{
			name: "documents and template",
			builder: esign.NewEnvelope("").
				AddDocument("TestFile.pdf", testPDF).
				AddSigner(testSigner).
				FromTemplate("tmpl-1"),
			wantErr: esign.ErrMixedContent,
		},
		{
			name:    "template role without name",
			builder: esign.NewEnvelope("").FromTemplate("tmpl-1", esign.TemplateRole{Email: "x@example.com"}),
			wantErr: esign.ErrNoRoleName,
		},
		{
			name:    "empty document",
			builder: esign.NewEnvelope("").AddDocument("TestFile.pdf", nil).AddSigner(testSigner),
			wantMsg: "is empty",
		},
		{
			name:    "empty template id",
			builder: esign.NewEnvelope("").FromTemplate(""),
			wantMsg: "template id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				require.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}
