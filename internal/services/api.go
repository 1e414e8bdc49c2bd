// HTTP wrapper for the catalog REST API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/shopx/internal/shared"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "http://localhost:4000"

// APIService performs raw HTTP requests against the catalog API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the catalog API.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// NewHTTPClient returns a client with the given timeout. A non-empty token is sent as a bearer token on every request.
func NewHTTPClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	if token == "" {
		return &http.Client{Timeout: timeout}
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = timeout
	return client
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// APIError is a failed request with a human-readable message taken from the response body or the transport error.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// Is matches [shared.ErrAPIRequest] for every failure and [shared.ErrNotFound] for 404 responses.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}

// Get performs a GET request to the specified path and returns the raw response, whatever its status.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Send(ctx, http.MethodGet, path, nil, "")
}

// Send performs a request with an optional body and returns the raw response, whatever its status.
func (a *APIService) Send(ctx context.Context, method, path string, body io.Reader, contentType string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Call sends a request and decodes a 2xx JSON response into out, which may be nil. Other statuses become an
// [*APIError].
func (a *APIService) Call(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := a.Send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return ResponseError(resp)
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s %s response: %v", shared.ErrAPIRequest, method, path, err)
	}
	return nil
}

// ResponseError builds the [*APIError] for a non-2xx response.
//
// The message is a JSON string body, else the "message" member of a JSON object, else a plain-text body, else
// "Request failed with status code N".
func ResponseError(resp *APIResponse) *APIError {
	msg := ""
	switch data := resp.JSONData.(type) {
	case string:
		msg = data
	case map[string]any:
		if m, ok := data["message"].(string); ok {
			msg = m
		}
	case nil:
		if !resp.IsJSON {
			msg = strings.TrimSpace(string(resp.Body))
		}
	}

	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

func transportMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Request failed"
}
