// HTTP transport shared by the AniList and MyAnimeList clients
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/desertthunder/lsx/internal/models"
)

const userAgent = "lsx/1.0"

// APIClient performs paced, optionally authenticated HTTP requests and buffers the response.
type APIClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIClient creates a client allowing requestsPerSecond requests with a burst of one.
// A non-positive rate disables pacing.
func NewAPIClient(client *http.Client, requestsPerSecond float64) *APIClient {
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &APIClient{
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// HTTPClient returns the underlying client.
func (a *APIClient) HTTPClient() *http.Client {
	return a.httpClient
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the body is well-formed JSON.
func (r *APIResponse) IsJSON() bool {
	return gjson.ValidBytes(r.Body)
}

// Get reads a value from a JSON body by gjson path.
func (r *APIResponse) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Decode unmarshals the JSON body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Request describes one outbound call.
type Request struct {
	Method  string
	URL     string
	Session *models.Session // adds an Authorization header when set
	JSON    any             // encoded as the body with Content-Type application/json
	Form    url.Values      // encoded as the body with Content-Type application/x-www-form-urlencoded
}

// Do waits for the rate limiter, sends req and reads the full body.
//
// Non-2xx responses are returned, not treated as errors; callers decide what a status means.
func (a *APIClient) Do(ctx context.Context, req Request) (*APIResponse, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	case req.Form != nil:
		body, contentType = strings.NewReader(req.Form.Encode()), "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Session != nil {
		httpReq.Header.Set("Authorization", req.Session.Authorization())
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request cancelled: %w", err)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}, nil
}

// Get performs an authenticated GET.
func (a *APIClient) Get(ctx context.Context, rawURL string, session *models.Session) (*APIResponse, error) {
	return a.Do(ctx, Request{Method: http.MethodGet, URL: rawURL, Session: session})
}

// PostJSON performs a POST with a JSON body.
func (a *APIClient) PostJSON(ctx context.Context, rawURL string, session *models.Session, body any) (*APIResponse, error) {
	return a.Do(ctx, Request{Method: http.MethodPost, URL: rawURL, Session: session, JSON: body})
}

// PatchForm performs a PATCH with a form-encoded body.
func (a *APIClient) PatchForm(ctx context.Context, rawURL string, session *models.Session, form url.Values) (*APIResponse, error) {
	return a.Do(ctx, Request{Method: http.MethodPatch, URL: rawURL, Session: session, Form: form})
}

// truncate shortens upstream payloads kept in error messages.
func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
