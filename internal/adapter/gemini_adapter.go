package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/nativex/ai-router/internal/provider"
)

// DefaultGeminiBaseURL is the default Gemini API endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiAdapter implements provider.Provider for the Google Gemini API.
//
// Empty result policy: a reply without candidates is a ProviderError, unlike
// the other vendors. Only the first candidate's parts are used.
type GeminiAdapter struct {
	client
}

// NewGeminiAdapter creates an adapter registered as "gemini".
func NewGeminiAdapter(apiKey string, opts ...Option) *GeminiAdapter {
	return &GeminiAdapter{client: newClient("gemini", "Gemini", apiKey, DefaultGeminiBaseURL, opts)}
}

// Name returns the provider identifier.
func (g *GeminiAdapter) Name() string {
	return g.name
}

// Complete performs a generateContent request. The API key travels as a query parameter.
func (g *GeminiAdapter) Complete(ctx context.Context, req provider.PromptRequest) (provider.ProviderResponse, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(req.Model), url.QueryEscape(g.apiKey))

	body, err := g.postJSON(ctx, endpoint, nil, g.mapToGeminiRequest(req))
	if err != nil {
		return provider.ProviderResponse{}, err
	}

	var resp GeminiResponse
	if err := g.decode(body, &resp); err != nil {
		return provider.ProviderResponse{}, err
	}
	if len(resp.Candidates) == 0 {
		return provider.ProviderResponse{}, g.payloadError("response did not include candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return provider.ProviderResponse{
		Text:  sb.String(),
		Raw:   body,
		Usage: numericUsage(resp.UsageMetadata),
	}, nil
}

// mapToGeminiRequest places the persona in a dedicated systemInstruction object.
func (g *GeminiAdapter) mapToGeminiRequest(req provider.PromptRequest) GeminiRequest {
	temperature := req.Temperature
	maxTokens := req.MaxTokens

	geminiReq := GeminiRequest{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: &maxTokens,
		},
	}

	if req.SystemPrompt != "" {
		geminiReq.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: req.SystemPrompt}},
		}
	}

	return geminiReq
}

// ============================================================================
// Gemini API Types
// ============================================================================

// GeminiRequest represents a Gemini generateContent request.
type GeminiRequest struct {
	Contents          []GeminiContent        `json:"contents"`
	SystemInstruction *GeminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  GeminiGenerationConfig `json:"generationConfig"`
}

// GeminiContent represents a content block in Gemini format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of a content block.
type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

// GeminiGenerationConfig contains generation parameters.
type GeminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// GeminiResponse represents a Gemini generateContent response.
type GeminiResponse struct {
	Candidates    []GeminiCandidate `json:"candidates"`
	UsageMetadata json.RawMessage   `json:"usageMetadata,omitempty"`
}

// GeminiCandidate represents a single generated candidate.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}
