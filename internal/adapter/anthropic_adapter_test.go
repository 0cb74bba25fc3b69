package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nativex/ai-router/internal/provider"
)

func TestAnthropicAdapter_Complete(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"content": [{"type":"text","text":"wor"},{"type":"tool_use","id":"t"},{"type":"text","text":"ld"}],
			"usage": {"input_tokens": 2, "output_tokens": 5, "cache_creation": {"ephemeral_5m_input_tokens": 0}}
		}`))
	}))
	defer srv.Close()

	adapter := NewAnthropicAdapter("test-key", "", WithBaseURL(srv.URL))
	resp, err := adapter.Complete(context.Background(), provider.PromptRequest{
		Prompt:       "hello",
		Model:        "claude-3-5-sonnet-latest",
		SystemPrompt: "persona",
		Temperature:  0.5,
		MaxTokens:    64,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != DefaultAnthropicVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotBody["system"] != "persona" {
		t.Errorf("system field = %v, want persona", gotBody["system"])
	}
	if msgs, _ := gotBody["messages"].([]interface{}); len(msgs) != 1 {
		t.Errorf("messages = %v, want only the user turn", gotBody["messages"])
	}
	if gotBody["max_tokens"] != float64(64) {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}

	if resp.Text != "world" {
		t.Errorf("Text = %q, want world", resp.Text)
	}
	if resp.Usage["input_tokens"] != 2 || resp.Usage["output_tokens"] != 5 || len(resp.Usage) != 2 {
		t.Errorf("Usage = %v", resp.Usage)
	}
}

func TestAnthropicAdapter_OmitsEmptySystem(t *testing.T) {
	adapter := NewAnthropicAdapter("k", "2024-01-01")
	b, _ := json.Marshal(adapter.mapToAnthropicRequest(provider.PromptRequest{Prompt: "x"}))

	var payload map[string]interface{}
	_ = json.Unmarshal(b, &payload)
	if _, ok := payload["system"]; ok {
		t.Errorf("payload %s should not carry a system field", b)
	}
	if adapter.version != "2024-01-01" {
		t.Errorf("version = %s", adapter.version)
	}
}

func TestAnthropicAdapter_EmptyContentIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	adapter := NewAnthropicAdapter("k", "", WithBaseURL(srv.URL))
	resp, err := adapter.Complete(context.Background(), provider.PromptRequest{Prompt: "x", Model: "m"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "" {
		t.Errorf("Text = %q, want empty", resp.Text)
	}
	if resp.Usage == nil || len(resp.Usage) != 0 {
		t.Errorf("Usage = %v, want empty map", resp.Usage)
	}
}

func TestAnthropicAdapter_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	adapter := NewAnthropicAdapter("k", "", WithBaseURL(srv.URL))
	_, err := adapter.Complete(context.Background(), provider.PromptRequest{Prompt: "x", Model: "m"})

	var pe *provider.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *provider.ProviderError", err)
	}
	if pe.Error() != "Anthropic error 529: Overloaded" {
		t.Errorf("Error() = %q", pe.Error())
	}
}

func TestNumericUsage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"absent", "", 0},
		{"null", "null", 0},
		{"not an object", `[1,2]`, 0},
		{"mixed", `{"a":1,"b":"x","c":{"d":2},"e":3.5}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := numericUsage(json.RawMessage(tt.raw))
			if got == nil {
				t.Fatal("numericUsage returned nil")
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d (%v)", len(got), tt.want, got)
			}
		})
	}
}
