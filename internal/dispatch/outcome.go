// Package dispatch turns one user command into one backend call and shapes
// the result into a uniform Outcome.
package dispatch

import "context"

// Kind classifies how a dispatch ended. Values double as metric labels.
type Kind string

const (
	KindSuccess            Kind = "success"
	KindUnknownProvider    Kind = "unknown_provider"
	KindRateLimited        Kind = "rate_limited"
	KindProviderError      Kind = "provider_error"
	KindUnexpectedFailure  Kind = "unexpected_failure"
	KindThreadNotPermitted Kind = "thread_not_permitted"
	KindInvalidRequest     Kind = "invalid_request"
)

// User-facing messages.
const (
	MsgUnknownProvider    = "Unknown provider. Available providers: "
	MsgRateLimited        = "Channel rate limit exceeded. Try again shortly."
	MsgProviderError      = "Provider error: "
	MsgUnexpectedFailure  = "Unexpected error while contacting the provider."
	MsgThreadNotPermitted = "Thread creation is only supported for public responses."
	MsgEmptyPrompt        = "Prompt must not be empty."
	MsgEmptyResponse      = "(empty response)"
)

// Command is one invocation of the ai command.
type Command struct {
	// Provider is the requested backend name. Empty selects the default.
	Provider string

	// Model is passed to the backend verbatim. Empty selects the default.
	Model string

	// Role is the requested persona key.
	Role string

	Prompt      string
	Temperature float64
	MaxTokens   int

	// Origin identifies the conversation context the command came from.
	// It is the rate limiter key.
	Origin string

	// Public asks for a response visible to everyone in the origin.
	Public bool

	// Thread asks for a follow-up thread on the response.
	Thread bool

	UserID   string
	UserName string

	// Deferrer is notified once the command has been admitted. Optional.
	Deferrer Deferrer
}

// Deferrer lets the command layer acknowledge a long-running command before
// the backend answers. Visibility follows the command's Public flag.
type Deferrer interface {
	Defer(ctx context.Context, public bool) error
}

// DeferFunc adapts a function to the Deferrer interface.
type DeferFunc func(ctx context.Context, public bool) error

// Defer calls f.
func (f DeferFunc) Defer(ctx context.Context, public bool) error {
	return f(ctx, public)
}

// Attachment is a file delivered next to a truncated body.
type Attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Outcome is the uniform result of a dispatch.
type Outcome struct {
	Kind Kind `json:"kind"`

	// Provider and Model are set once the provider has been resolved.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// Title is "<Provider> • <model>" for outcomes that carry a response.
	Title string `json:"title,omitempty"`

	// Body is the response text or the failure message.
	Body string `json:"body"`

	Persona      string      `json:"persona,omitempty"`
	UsageSummary string      `json:"usage,omitempty"`
	Attachment   *Attachment `json:"attachment,omitempty"`

	// Public is false for every failure.
	Public bool `json:"public"`

	OpenThread bool   `json:"open_thread"`
	ThreadName string `json:"thread_name,omitempty"`

	// Advisory is a secondary private notice sent after the main response.
	Advisory string `json:"advisory,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// Failed reports whether the outcome carries no backend response.
func (o Outcome) Failed() bool {
	return o.Kind != KindSuccess && o.Kind != KindThreadNotPermitted
}
