package dispatch

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MaxInlineRunes is the longest body delivered without truncation.
	MaxInlineRunes = 3900

	// TruncatedRunes is how much of an oversized body stays inline.
	TruncatedRunes = 1900

	// AttachmentFilename names the file carrying an oversized body.
	AttachmentFilename = "ai-response.txt"

	ellipsis = "…"
)

// shapeText trims the backend text and truncates it for inline delivery.
// Oversized text is returned whole as an attachment.
func shapeText(text string) (string, *Attachment) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return MsgEmptyResponse, nil
	}
	if utf8.RuneCountInString(trimmed) <= MaxInlineRunes {
		return trimmed, nil
	}

	runes := []rune(trimmed)
	return string(runes[:TruncatedRunes]) + ellipsis, &Attachment{
		Filename: AttachmentFilename,
		Content:  trimmed,
	}
}

// summarizeUsage renders usage counters as "key: value" pairs sorted by key.
func summarizeUsage(usage map[string]float64) string {
	if len(usage) == 0 {
		return ""
	}

	keys := make([]string, 0, len(usage))
	for k := range usage {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strconv.FormatFloat(usage[k], 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}

// title renders "<Provider> • <model>". A Caser is not safe for concurrent
// use, so one is built per call.
func title(providerName, model string) string {
	return cases.Title(language.Und).String(providerName) + " • " + model
}

// threadName names the follow-up thread after the requesting user.
func threadName(userName string) string {
	if strings.TrimSpace(userName) == "" {
		userName = "Conversation"
	}
	return "AI • " + userName
}

func clamp[T int | float64](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
