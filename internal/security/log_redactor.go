// Package security keeps backend credentials out of log output.
package security

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces anything that looks like a credential.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns match the key formats of every supported backend.
// More specific prefixes come first so they are replaced whole.
var sensitivePatterns = []*regexp.Regexp{
	// Anthropic: sk-ant-api03-...
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{20,}`),
	// OpenAI: sk-..., sk-proj-...
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	// xAI: xai-...
	regexp.MustCompile(`xai-[a-zA-Z0-9_-]{20,}`),
	// Google AI: AIza...
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`),
	// Authorization header values.
	regexp.MustCompile(`(Bearer\s+)[a-zA-Z0-9._-]{16,}`),
	// Gemini passes its key in the query string, which leaks into url.Error text.
	regexp.MustCompile(`([?&]key=)[^&\s"]+`),
	// x-api-key header dumps.
	regexp.MustCompile(`(?i)(x-api-key:\s*)\S+`),
}

// Redact scans a string for credential patterns and replaces them.
func Redact(s string) string {
	result := s
	for _, pattern := range sensitivePatterns {
		if pattern.NumSubexp() > 0 {
			result = pattern.ReplaceAllString(result, "${1}"+RedactedPlaceholder)
			continue
		}
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// RedactedHandler wraps an slog.Handler and redacts credentials from every record.
type RedactedHandler struct {
	inner slog.Handler
}

// NewRedactedHandler creates a handler that redacts before delegating to inner.
func NewRedactedHandler(inner slog.Handler) *RedactedHandler {
	return &RedactedHandler{inner: inner}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the message and attributes of r.
func (h *RedactedHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *RedactedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactedHandler{inner: h.inner.WithAttrs(redacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactedHandler) WithGroup(name string) slog.Handler {
	return &RedactedHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(a.Key)) {
		return slog.String(a.Key, RedactedPlaceholder)
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = redactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	}

	switch v := a.Value.Resolve().Any().(type) {
	case string:
		return slog.String(a.Key, Redact(v))
	case error:
		return slog.String(a.Key, Redact(v.Error()))
	case []string:
		redacted := make([]string, len(v))
		for i, s := range v {
			redacted[i] = Redact(s)
		}
		return slog.Any(a.Key, redacted)
	}

	return a
}

// sensitiveKeys are substrings of attribute names whose values are never logged.
var sensitiveKeys = []string{
	"authorization",
	"api_key",
	"apikey",
	"api-key",
	"secret",
	"password",
	"bearer",
	"credential",
}

// isSensitiveKey reports whether an attribute name denotes a credential.
// Token counters such as max_tokens are not credentials.
func isSensitiveKey(key string) bool {
	for _, k := range sensitiveKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return key == "token" || strings.HasSuffix(key, "_token")
}
