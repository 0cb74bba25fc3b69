// Package adapter provides implementations for external AI provider integrations.
// Each adapter translates the canonical provider.PromptRequest into one vendor's
// HTTP API and the vendor's reply back into a provider.ProviderResponse.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nativex/ai-router/internal/provider"
)

// DefaultTimeout is the fixed per-call timeout applied to every backend request.
const DefaultTimeout = 90 * time.Second

// maxErrorBody bounds how much of an error body is read for message extraction.
const maxErrorBody = 64 << 10

var (
	_ provider.Provider = (*OpenAIAdapter)(nil)
	_ provider.Provider = (*AnthropicAdapter)(nil)
	_ provider.Provider = (*GeminiAdapter)(nil)
)

// Option is a functional option shared by all adapters.
type Option func(*client)

// WithBaseURL overrides the vendor's default base URL. Empty values are ignored.
func WithBaseURL(url string) Option {
	return func(c *client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = timeout
	}
}

// client is the HTTP plumbing common to every vendor adapter.
type client struct {
	// name is the registry key, label the display name used in error messages.
	name  string
	label string

	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func newClient(name, label, apiKey, baseURL string, opts []Option) client {
	c := client{
		name:    name,
		label:   label,
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// postJSON sends payload to url and returns the response body.
// Status codes >= 400 become a *provider.ProviderError; transport failures are
// returned wrapped so the dispatcher can tell them apart.
func (c *client) postJSON(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s http request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.statusError(resp.StatusCode, errBody)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}
	return respBody, nil
}

// statusError builds the user-facing error for a failed HTTP exchange.
func (c *client) statusError(status int, body []byte) *provider.ProviderError {
	return &provider.ProviderError{
		Provider:   c.name,
		StatusCode: status,
		Message:    fmt.Sprintf("%s error %d: %s", c.label, status, errorMessage(status, body)),
	}
}

// payloadError reports a 2xx reply that could not be used.
func (c *client) payloadError(format string, args ...any) *provider.ProviderError {
	return &provider.ProviderError{
		Provider: c.name,
		Message:  c.label + " " + fmt.Sprintf(format, args...),
	}
}

// decode unmarshals a successful body into out, treating bad JSON as a backend fault.
func (c *client) decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return c.payloadError("returned a malformed response: %v", err)
	}
	return nil
}

// errorEnvelope is the {"error": {"message": ...}} shape shared by all vendors.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// errorMessage extracts the vendor's error message, falling back to the status text.
func errorMessage(status int, body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unknown error"
}

// numericUsage keeps the numeric counters of a vendor usage object.
// Nested objects and non-numeric values are dropped.
func numericUsage(raw json.RawMessage) map[string]float64 {
	usage := make(map[string]float64)
	if len(raw) == 0 {
		return usage
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return usage
	}
	for k, v := range fields {
		if n, ok := v.(float64); ok {
			usage[k] = n
		}
	}
	return usage
}
