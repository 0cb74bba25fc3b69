// Package ui provides colorized console output for the AI router: the startup
// banner, per-request status lines and shutdown messages.
package ui

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR DEFINITIONS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// plain writes uncolored text to the same writer the colors use.
func plain(format string, args ...any) {
	fmt.Fprintf(color.Output, format, args...)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// PrintRequest logs a request with styled output.
// Color-codes status, method, and latency for quick visual parsing.
func PrintRequest(method, path string, status int, latency time.Duration, provider string) {
	mutedText.Printf("%s ", time.Now().Format("15:04:05"))

	printMethodBadge(method)
	plain(" %-20s ", truncatePath(path, 20))

	printStatusBadge(status)
	plain(" ")

	printLatency(latency)

	if provider != "" {
		mutedText.Printf(" via:%s", provider)
	}

	plain("\n")
}

// PrintOutcome logs how a dispatch ended.
// Format: [KIND] provider • model
func PrintOutcome(kind, provider, model string) {
	switch kind {
	case "success":
		successBadge.Print(" ANSWERED ")
	case "thread_not_permitted":
		warningBadge.Print("[NO THREAD]")
	case "rate_limited":
		warningBadge.Print("[THROTTLED]")
	case "unknown_provider":
		warningBadge.Print("[UNKNOWN PROVIDER]")
	case "invalid_request":
		warningBadge.Print("[INVALID]")
	case "provider_error":
		errorBadge.Print(" PROVIDER ERROR ")
	default:
		errorBadge.Print(" FAILURE ")
	}

	if provider != "" {
		plain(" ")
		accentText.Print(provider)
		if model != "" {
			mutedText.Printf(" • %s", model)
		}
	}
	plain("\n")
}

// printMethodBadge prints the HTTP method with appropriate color.
func printMethodBadge(method string) {
	switch method {
	case "POST":
		methodPOST.Printf(" %-4s ", method)
	case "GET":
		methodGET.Printf(" %-4s ", method)
	default:
		debugBadge.Printf(" %-4s ", method)
	}
}

// printStatusBadge prints the status code with appropriate color.
func printStatusBadge(status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Printf(" %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Printf(" %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Printf(" %d ", status)
	default:
		errorBadge.Printf(" %d ", status)
	}
}

// printLatency prints latency with color gradient.
// Backend calls take seconds, so the thresholds are coarse.
// Green: < 2s, Yellow: < 10s, Red: >= 10s
func printLatency(latency time.Duration) {
	ms := latency.Milliseconds()
	latencyStr := fmt.Sprintf("%6dms", ms)

	switch {
	case latency < 2*time.Second:
		successText.Print(latencyStr)
	case latency < 10*time.Second:
		warningText.Print(latencyStr)
	default:
		errorText.Print(latencyStr)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UTILITY FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

// MaskKey returns a short masked version of an API key.
// Format: xxxx...xxxx
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// truncatePath truncates a path to maxLen characters.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// ProviderLine describes one registered backend for the startup summary.
type ProviderLine struct {
	Name    string
	BaseURL string
	Key     string
}

// PrintStartupInfo prints styled server startup information.
func PrintStartupInfo(host string, port int, providers []ProviderLine, rateLimit int, window time.Duration) {
	plain("\n")
	infoBadge.Print("[ROUTER]")
	plain(" Server starting on ")
	neonBlue.Printf("http://%s:%d\n", host, port)

	infoBadge.Print("[ROUTER]")
	plain(" Providers: ")
	if len(providers) > 0 {
		successText.Printf("%d", len(providers))
	} else {
		errorText.Print("0")
	}
	plain(" | Rate limit: ")
	accentText.Printf("%d per %s\n", rateLimit, window)

	for _, p := range providers {
		mutedText.Print("           • ")
		infoText.Printf("%-10s", p.Name)
		mutedText.Printf(" %s key:%s\n", p.BaseURL, MaskKey(p.Key))
	}

	plain("\n")
	printEndpoints()
}

// printEndpoints prints the available API endpoints.
func printEndpoints() {
	mutedText.Println("  ┌─────────────────────────────────────────────────────────┐")
	printEndpoint(methodPOST, "POST", "/v1/ai           ", "Route a prompt to a provider   ")
	printEndpoint(methodGET, "GET", "/v1/providers    ", "Provider autocomplete          ")
	printEndpoint(methodGET, "GET", "/v1/personas     ", "Persona autocomplete           ")
	printEndpoint(methodGET, "GET", "/health          ", "Health check                   ")
	printEndpoint(methodGET, "GET", "/metrics         ", "Prometheus metrics             ")
	mutedText.Println("  └─────────────────────────────────────────────────────────┘")
	plain("\n")
}

func printEndpoint(badge *color.Color, method, path, desc string) {
	mutedText.Print("  │ ")
	badge.Printf(" %-4s ", method)
	plain(" %s ", path)
	mutedText.Print(" " + desc)
	mutedText.Println("│")
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	plain("\n")
	warningBadge.Print("[SHUTDOWN]")
	warningText.Println(" Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Print(" OK ")
	plain(" ")
	successText.Println("Server stopped. Goodbye!")
}
