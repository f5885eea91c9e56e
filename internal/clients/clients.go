// Package clients calls sibling campus services over plain HTTP.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single collaborator call.
const DefaultTimeout = 5 * time.Second

// ErrCollaboratorFailed marks a call that did not produce an accepted response.
var ErrCollaboratorFailed = errors.New("collaborator call failed")

// APIError carries a non-accepted response from a collaborator.
type APIError struct {
	StatusCode int
	Body       []byte
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("collaborator error: status %d from %s", e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	return ErrCollaboratorFailed
}

// Detail extracts the FastAPI-style {"detail": "..."} message, if any.
func (e *APIError) Detail() string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.Detail
}

type httpCaller struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func newHTTPCaller(baseURL string, timeout time.Duration) httpCaller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return httpCaller{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// postJSON sends payload and returns an *APIError for non-2xx responses.
func (h httpCaller) postJSON(ctx context.Context, path string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCollaboratorFailed, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: respBody, Endpoint: path}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
