// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and represent the heart of the application.
package domain

import "strings"

// ProviderType identifies a backend family and doubles as its registry name.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGemini    ProviderType = "gemini"
	ProviderGrok      ProviderType = "grok"
)

// KnownProviders lists the backend families in registration order.
var KnownProviders = []ProviderType{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGrok}

// Credential holds what is needed to reach one backend.
type Credential struct {
	// APIKey authenticates against the vendor. A backend without a key is not registered.
	APIKey string `json:"-" mapstructure:"api_key"`

	// BaseURL overrides the vendor's default endpoint. Empty keeps the default.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Version is the API version header value (Anthropic only).
	Version string `json:"version,omitempty" mapstructure:"version"`
}

// IsConfigured reports whether the credential carries a usable API key.
func (c Credential) IsConfigured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
