package dispatch

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestShapeText_CountsRunesNotBytes(t *testing.T) {
	// 3900 three-byte runes stay inline even though they exceed 3900 bytes.
	inline := strings.Repeat("語", MaxInlineRunes)
	body, att := shapeText(inline)
	if att != nil || body != inline {
		t.Errorf("%d-rune body was truncated", MaxInlineRunes)
	}

	long := strings.Repeat("語", MaxInlineRunes+1)
	body, att = shapeText("\n" + long + "\n")
	if att == nil {
		t.Fatal("expected attachment")
	}
	if n := utf8.RuneCountInString(body); n != TruncatedRunes+1 {
		t.Errorf("body runes = %d, want %d", n, TruncatedRunes+1)
	}
	if !strings.HasSuffix(body, "…") {
		t.Error("truncated body must end with an ellipsis")
	}
	if att.Content != long {
		t.Error("attachment must hold the trimmed full text")
	}
}

func TestSummarizeUsage(t *testing.T) {
	tests := []struct {
		name  string
		usage map[string]float64
		want  string
	}{
		{"nil", nil, ""},
		{"empty", map[string]float64{}, ""},
		{"integers print without decimals", map[string]float64{"b": 2, "a": 10}, "a: 10, b: 2"},
		{"fractions kept", map[string]float64{"cost": 0.25}, "cost: 0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarizeUsage(tt.usage); got != tt.want {
				t.Errorf("summarizeUsage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		provider, model, want string
	}{
		{"openai", "gpt-4o-mini", "Openai • gpt-4o-mini"},
		{"anthropic", "claude-3-5-haiku-latest", "Anthropic • claude-3-5-haiku-latest"},
		{"grok", "grok-2", "Grok • grok-2"},
	}

	for _, tt := range tests {
		if got := title(tt.provider, tt.model); got != tt.want {
			t.Errorf("title(%q, %q) = %q, want %q", tt.provider, tt.model, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if clamp(-0.5, 0.0, 1.0) != 0.0 || clamp(0.3, 0.0, 1.0) != 0.3 || clamp(5000, 32, 4000) != 4000 {
		t.Error("clamp out of bounds")
	}
}
