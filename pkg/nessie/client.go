// Package nessie provides a minimal client for the Capital One Nessie
// banking API
package nessie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the Nessie banking API. The API key
// is carried as the "key" query parameter on every request.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default with 15s timeout is used.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, HTTP: httpClient}
}

// APIError is the normalized failure value for an upstream call: either the
// upstream's structured error body or a generic transport message. Status is
// zero when the request never reached the upstream.
type APIError struct {
	Status  int             `json:"status,omitempty"`
	Code    int             `json:"code,omitempty"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// JSON serializes the error for inclusion in a response envelope. The
// upstream's own error body wins when it was parseable JSON.
func (e *APIError) JSON() string {
	if len(e.Body) > 0 {
		return string(e.Body)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return `{"message":"` + e.Message + `"}`
	}
	return string(data)
}

// Call issues a single request against the upstream API and returns the raw
// response body or a normalized APIError. It never panics and performs no
// retries: failure is a first-class value for the caller to inspect.
func (c *Client) Call(ctx context.Context, method, path string, body interface{}) (json.RawMessage, *APIError) {
	reqURL, err := c.buildURL(path)
	if err != nil {
		return nil, &APIError{Message: "invalid request URL: " + err.Error()}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Message: "failed to encode request body: " + err.Error()}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, &APIError{Message: "failed to build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &APIError{Message: "request to banking API failed: " + err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "failed to read response body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp.StatusCode, data)
	}

	if len(data) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}

// buildURL composes the request URL with the authentication key
func (c *Client) buildURL(path string) (string, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", c.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// newStatusError normalizes a non-2xx response. The upstream error body is
// preserved verbatim when it is valid JSON; otherwise a generic message
// carries the status.
func newStatusError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: fmt.Sprintf("banking API returned status %d", status),
	}

	var parsed struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if json.Valid(body) && len(body) > 0 {
		apiErr.Body = json.RawMessage(body)
		if err := json.Unmarshal(body, &parsed); err == nil {
			if parsed.Message != "" {
				apiErr.Message = parsed.Message
			}
			apiErr.Code = parsed.Code
		}
	}

	return apiErr
}
