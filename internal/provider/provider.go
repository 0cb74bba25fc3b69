// Package provider defines the vendor-neutral completion capability shared by
// every backend adapter, and the registry that holds the live adapters.
package provider

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrEmptyPrompt is returned when a request is built without prompt text.
var ErrEmptyPrompt = errors.New("prompt is empty")

// PromptRequest is the canonical request handed to an adapter.
// It is built once per dispatch and never mutated afterwards.
type PromptRequest struct {
	// Prompt is the end user's text. Never empty.
	Prompt string

	// Model is passed to the backend verbatim.
	Model string

	// Temperature is within [0.0, 1.0].
	Temperature float64

	// MaxTokens is within [32, 4000]; a backend may cap it further.
	MaxTokens int

	// SystemPrompt is the optional persona instruction.
	SystemPrompt string

	// Metadata carries caller identity and correlation values for logging.
	// Adapters never interpret it.
	Metadata map[string]any
}

// ProviderResponse is the canonical result of one completion.
type ProviderResponse struct {
	// Text is the generated text. It may be empty but is always defined.
	Text string

	// Raw is the backend payload, kept for diagnostics only.
	Raw json.RawMessage

	// Usage holds the numeric consumption counters reported by the backend.
	Usage map[string]float64
}

// Provider is one vendor-specific implementation of the completion capability.
type Provider interface {
	// Name returns the registry key for this provider.
	Name() string

	// Complete sends the request to the backend and returns its canonical response.
	// Vendor faults are reported as *ProviderError; any other error is a transport
	// or serialization failure.
	Complete(ctx context.Context, req PromptRequest) (ProviderResponse, error)
}

// ProviderError is a backend fault: a non-2xx status, a malformed payload, or a
// vendor-specific "no result" condition. Its message is safe to show to end users.
type ProviderError struct {
	// Provider is the registry name of the failing adapter.
	Provider string

	// StatusCode is the HTTP status, or 0 when the fault was found in a 2xx body.
	StatusCode int

	// Message is the human-readable description.
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// IsProviderError reports whether err is, or wraps, a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
