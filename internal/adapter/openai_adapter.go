package adapter

import (
	"context"

	"github.com/nativex/ai-router/internal/provider"
)

const (
	// DefaultOpenAIBaseURL is the default OpenAI API endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com"

	// DefaultGrokBaseURL is the default xAI API endpoint.
	DefaultGrokBaseURL = "https://api.x.ai"
)

// OpenAIAdapter implements provider.Provider for the OpenAI chat completions API
// and for OpenAI-compatible third parties such as xAI.
//
// Empty result policy: a reply with zero choices is a ProviderError; a choice
// whose content is null is a success with empty text.
type OpenAIAdapter struct {
	client
}

// NewOpenAIAdapter creates an adapter registered as "openai".
func NewOpenAIAdapter(apiKey string, opts ...Option) *OpenAIAdapter {
	return &OpenAIAdapter{client: newClient("openai", "OpenAI", apiKey, DefaultOpenAIBaseURL, opts)}
}

// NewGrokAdapter creates an OpenAI-compatible adapter registered as "grok".
func NewGrokAdapter(apiKey string, opts ...Option) *OpenAIAdapter {
	return &OpenAIAdapter{client: newClient("grok", "Grok", apiKey, DefaultGrokBaseURL, opts)}
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() string {
	return a.name
}

// Complete performs a chat completion request.
func (a *OpenAIAdapter) Complete(ctx context.Context, req provider.PromptRequest) (provider.ProviderResponse, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + a.apiKey,
	}

	body, err := a.postJSON(ctx, a.baseURL+"/v1/chat/completions", headers, a.mapToOpenAIRequest(req))
	if err != nil {
		return provider.ProviderResponse{}, err
	}

	var resp OpenAIResponse
	if err := a.decode(body, &resp); err != nil {
		return provider.ProviderResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return provider.ProviderResponse{}, a.payloadError("response did not include choices")
	}

	text := ""
	if content := resp.Choices[0].Message.Content; content != nil {
		text = *content
	}

	return provider.ProviderResponse{
		Text:  text,
		Raw:   body,
		Usage: numericUsage(resp.Usage),
	}, nil
}

// mapToOpenAIRequest places the persona as a leading system message.
func (a *OpenAIAdapter) mapToOpenAIRequest(req provider.PromptRequest) OpenAIRequest {
	messages := make([]OpenAIMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, OpenAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, OpenAIMessage{Role: "user", Content: req.Prompt})

	return OpenAIRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}
