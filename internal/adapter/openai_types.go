package adapter

import "encoding/json"

// OpenAI chat completion wire types.
// xAI and other OpenAI-compatible vendors accept the same schema.

// OpenAIRequest represents an OpenAI chat completion request.
type OpenAIRequest struct {
	// Model specifies which model to use (e.g., "gpt-4o-mini", "grok-2").
	Model string `json:"model"`

	// Messages holds the optional system message followed by the user prompt.
	Messages []OpenAIMessage `json:"messages"`

	// Temperature controls randomness.
	Temperature float64 `json:"temperature"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens"`
}

// OpenAIMessage represents a single message in the conversation.
type OpenAIMessage struct {
	// Role is one of: "system", "user", "assistant".
	Role string `json:"role"`

	// Content is the message text content.
	Content string `json:"content"`
}

// OpenAIResponse represents an OpenAI chat completion response.
type OpenAIResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []OpenAIChoice  `json:"choices"`
	Usage   json.RawMessage `json:"usage,omitempty"`
}

// OpenAIChoice represents a single completion choice.
type OpenAIChoice struct {
	Index int `json:"index"`

	// Message holds the generated reply. Content may be null for refusals
	// and tool calls, hence the pointer.
	Message struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`

	// FinishReason indicates why the model stopped generating.
	FinishReason string `json:"finish_reason"`
}
