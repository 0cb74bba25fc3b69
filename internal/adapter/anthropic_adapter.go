package adapter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nativex/ai-router/internal/provider"
)

const (
	// DefaultAnthropicBaseURL is the default Anthropic API endpoint.
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicVersion is sent as the anthropic-version header.
	DefaultAnthropicVersion = "2023-06-01"
)

// AnthropicAdapter implements provider.Provider for the Anthropic messages API.
//
// Empty result policy: an empty content list is a success with empty text.
type AnthropicAdapter struct {
	client
	version string
}

// NewAnthropicAdapter creates an adapter registered as "anthropic".
// An empty version selects DefaultAnthropicVersion.
func NewAnthropicAdapter(apiKey, version string, opts ...Option) *AnthropicAdapter {
	if version == "" {
		version = DefaultAnthropicVersion
	}
	return &AnthropicAdapter{
		client:  newClient("anthropic", "Anthropic", apiKey, DefaultAnthropicBaseURL, opts),
		version: version,
	}
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() string {
	return a.name
}

// Complete performs a messages request.
func (a *AnthropicAdapter) Complete(ctx context.Context, req provider.PromptRequest) (provider.ProviderResponse, error) {
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": a.version,
	}

	body, err := a.postJSON(ctx, a.baseURL+"/v1/messages", headers, a.mapToAnthropicRequest(req))
	if err != nil {
		return provider.ProviderResponse{}, err
	}

	var resp AnthropicResponse
	if err := a.decode(body, &resp); err != nil {
		return provider.ProviderResponse{}, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}

	return provider.ProviderResponse{
		Text:  sb.String(),
		Raw:   body,
		Usage: numericUsage(resp.Usage),
	}, nil
}

// mapToAnthropicRequest places the persona in the top-level system field.
func (a *AnthropicAdapter) mapToAnthropicRequest(req provider.PromptRequest) AnthropicRequest {
	return AnthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.SystemPrompt,
		Messages: []AnthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
}

// AnthropicRequest represents a messages API request.
type AnthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []AnthropicMessage `json:"messages"`
}

// AnthropicMessage is one conversation turn.
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicResponse represents a messages API response.
type AnthropicResponse struct {
	ID         string                  `json:"id"`
	Content    []AnthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      json.RawMessage         `json:"usage,omitempty"`
}

// AnthropicContentBlock is one element of the response content list.
// Blocks without text (tool use) contribute nothing.
type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
