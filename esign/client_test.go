package esign_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-esign-auth/esign"
	"github.com/jrsteele09/go-esign-auth/oauthmodel"
	"github.com/stretchr/testify/require"
)

const (
	testAccountID = "A-1"
	testToken     = "tok1"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Accept string
	Body   []byte
}

// fakeAPI serves canned responses by "METHOD path" and records every request.
type fakeAPI struct {
	server    *httptest.Server
	responses map[string]func(w http.ResponseWriter)
	requests  []recordedRequest
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{responses: map[string]func(http.ResponseWriter){}}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.requests = append(api.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Accept: r.Header.Get("Accept"),
			Body:   body,
		})
		respond, ok := api.responses[r.Method+" "+r.URL.Path]
		if !ok {
			http.Error(w, `{"errorCode":"NOT_FOUND","message":"no route"}`, http.StatusNotFound)
			return
		}
		respond(w)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) json(method, path string, status int, body any) {
	a.responses[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (a *fakeAPI) last() recordedRequest {
	return a.requests[len(a.requests)-1]
}

func (a *fakeAPI) client(t *testing.T) *esign.Client {
	t.Helper()
	c, err := esign.NewClient(context.Background(), oauthmodel.APIContext{
		AccessToken: testToken,
		AccountID:   testAccountID,
		BasePath:    a.server.URL + "/restapi",
	}, esign.WithBaseHTTPClient(a.server.Client()))
	require.NoError(t, err)
	return c
}

const accountPath = "/restapi/v2.1/accounts/A-1"

func TestNewClient_RejectsIncompleteContext(t *testing.T) {
	_, err := esign.NewClient(context.Background(), oauthmodel.APIContext{AccessToken: "t", AccountID: "a"})
	require.ErrorIs(t, err, oauthmodel.ErrIncompleteAPIContext)
}

func TestClient_CreateEnvelope(t *testing.T) {
	api := newFakeAPI(t)
	api.json(http.MethodPost, accountPath+"/envelopes", http.StatusCreated, map[string]string{
		"envelopeId": "env-1",
		"status":     "sent",
	})

	def, err := esign.NewEnvelope("").
		AddDocument("TestFile.pdf", testPDF).
		AddSigner(testSigner).
		Build()
	require.NoError(t, err)

	summary, err := api.client(t).CreateEnvelope(context.Background(), def)
	require.NoError(t, err)
	require.Equal(t, "env-1", summary.EnvelopeID)
	require.Equal(t, "sent", summary.Status)

	req := api.last()
	require.Equal(t, "Bearer "+testToken, req.Auth)
	require.Equal(t, "application/json", req.Accept)

	var sent esign.EnvelopeDefinition
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	require.Equal(t, def, sent)
}

func TestClient_Views(t *testing.T) {
	api := newFakeAPI(t)
	api.json(http.MethodPost, accountPath+"/envelopes/env-1/views/recipient", http.StatusCreated, map[string]string{"url": "https://sign.example.com/r"})
	api.json(http.MethodPost, accountPath+"/envelopes/env-1/views/sender", http.StatusCreated, map[string]string{"url": "https://sign.example.com/s?send=1"})
	api.json(http.MethodPost, accountPath+"/views/console", http.StatusCreated, map[string]string{"url": "https://sign.example.com/c"})
	c := api.client(t)
	ctx := context.Background()

	view, err := c.CreateRecipientView(ctx, "env-1", esign.RecipientViewRequest{
		ReturnURL:            "http://app.test",
		AuthenticationMethod: "none",
		Email:                testSigner.Email,
		UserName:             testSigner.Name,
		ClientUserID:         "1001",
	})
	require.NoError(t, err)
	require.Equal(t, "https://sign.example.com/r", view.URL)
	require.JSONEq(t, `{"returnUrl":"http://app.test","authenticationMethod":"none","email":"signer@example.com","userName":"Sam Signer","clientUserId":"1001"}`, string(api.last().Body))

	view, err = c.CreateSenderView(ctx, "env-1", esign.ReturnURLRequest{ReturnURL: "http://app.test"})
	require.NoError(t, err)
	require.Equal(t, "https://sign.example.com/s?send=1", view.URL)

	view, err = c.CreateConsoleView(ctx, esign.ConsoleViewRequest{ReturnURL: "http://app.test"})
	require.NoError(t, err)
	require.Equal(t, "https://sign.example.com/c", view.URL)

	_, err = c.CreateRecipientView(ctx, "", esign.RecipientViewRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "envelope id is required")
}

func TestClient_ListStatusChanges(t *testing.T) {
	api := newFakeAPI(t)
	api.json(http.MethodGet, accountPath+"/envelopes", http.StatusOK, map[string]any{
		"resultSetSize": "2",
		"envelopes": []map[string]string{
			{"envelopeId": "env-1", "status": "sent"},
			{"envelopeId": "env-2", "status": "completed"},
		},
	})

	from := time.Date(2030, 1, 15, 18, 30, 0, 0, time.UTC)
	info, err := api.client(t).ListStatusChanges(context.Background(), from)
	require.NoError(t, err)
	require.Equal(t, "2", info.ResultSetSize)
	require.Len(t, info.Envelopes, 2)
	require.Equal(t, "completed", info.Envelopes[1].Status)
	require.Equal(t, "from_date=2030-01-15", api.last().Query)
}

func TestClient_EnvelopeReads(t *testing.T) {
	api := newFakeAPI(t)
	api.json(http.MethodGet, accountPath+"/envelopes/env-1", http.StatusOK, map[string]string{"envelopeId": "env-1", "status": "delivered"})
	api.json(http.MethodGet, accountPath+"/envelopes/env-1/recipients", http.StatusOK, map[string]any{
		"recipientCount": "1",
		"signers":        []map[string]string{{"email": "signer@example.com", "name": "Sam Signer", "recipientId": "1", "status": "sent"}},
	})
	api.json(http.MethodGet, accountPath+"/envelopes/env-1/documents", http.StatusOK, map[string]any{
		"envelopeId": "env-1",
		"envelopeDocuments": []map[string]string{
			{"documentId": "1", "name": "TestFile.pdf"},
			{"documentId": "certificate", "name": "Summary"},
		},
	})
	api.responses[http.MethodGet+" "+accountPath+"/envelopes/env-1/documents/1"] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(testPDF)
	}

	c := api.client(t)
	ctx := context.Background()

	env, err := c.GetEnvelope(ctx, "env-1")
	require.NoError(t, err)
	require.Equal(t, "delivered", env.Status)

	recipients, err := c.ListRecipients(ctx, "env-1")
	require.NoError(t, err)
	require.Len(t, recipients.Signers, 1)
	require.Equal(t, "sent", recipients.Signers[0].Status)

	docs, err := c.ListDocuments(ctx, "env-1")
	require.NoError(t, err)
	require.Len(t, docs.EnvelopeDocuments, 2)

	content, err := c.GetDocument(ctx, "env-1", "1")
	require.NoError(t, err)
	require.Equal(t, testPDF, content)
	require.Equal(t, "application/pdf", api.last().Accept)
}

func TestClient_APIError(t *testing.T) {
	api := newFakeAPI(t)
	api.json(http.MethodGet, accountPath+"/envelopes/env-x", http.StatusBadRequest, map[string]string{
		"errorCode": "ENVELOPE_DOES_NOT_EXIST",
		"message":   "The envelope specified either does not exist or you have no rights to it.",
	})
	c := api.client(t)

	_, err := c.GetEnvelope(context.Background(), "env-x")
	require.Error(t, err)
	apiErr, ok := esign.IsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "ENVELOPE_DOES_NOT_EXIST", apiErr.ErrorCode)
	require.Contains(t, apiErr.Body, "does not exist")
	require.Contains(t, err.Error(), "[esign GetEnvelope]")

	// Binary endpoints report errors the same way.
	_, err = c.GetDocument(context.Background(), "env-x", "1")
	apiErr, ok = esign.IsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "NOT_FOUND", apiErr.ErrorCode)
}
