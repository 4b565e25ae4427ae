package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxErrorBody bounds how much of a failed response is kept on an APIError.
const maxErrorBody = 64 << 10

// url builds a complete URL by appending the path to the account URL.
func (c *Client) url(path string, query url.Values) string {
	u := c.accountURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest performs an authenticated request. body, if not nil, is sent as JSON.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// doJSON sends a JSON request and decodes a JSON response into target.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, query, body, "application/json")
	if err != nil {
		return err
	}
	return decodeJSON(resp, target)
}

// decodeJSON decodes a 2xx JSON response into target or returns an *APIError.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatus returns an *APIError for non-2xx responses. The body is left
// for the caller to close.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	// The API usually answers with {"errorCode": ..., "message": ...}
	_ = json.Unmarshal(bodyBytes, apiErr)
	return apiErr
}
