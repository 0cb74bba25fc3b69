// Package ui provides colorized console output for the AI router.
package ui

import (
	"github.com/fatih/color"
)

// Version is printed in the banner.
const Version = "v1.0.0"

// ══════════════════════════════════════════════════════════════════════════════
// ASCII ART BANNER
// ══════════════════════════════════════════════════════════════════════════════

// PrintBanner displays the startup banner.
func PrintBanner() {
	plain("\n")

	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	hiCyan := color.New(color.FgHiCyan)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite)
	dim := color.New(color.FgHiBlack)

	art := [][2]string{
		{" █████╗ ██╗", "    ██████╗  ██████╗ ██╗   ██╗████████╗███████╗██████╗ "},
		{"██╔══██╗██║", "    ██╔══██╗██╔═══██╗██║   ██║╚══██╔══╝██╔════╝██╔══██╗"},
		{"███████║██║", "    ██████╔╝██║   ██║██║   ██║   ██║   █████╗  ██████╔╝"},
		{"██╔══██║██║", "    ██╔══██╗██║   ██║██║   ██║   ██║   ██╔══╝  ██╔══██╗"},
		{"██║  ██║██║", "    ██║  ██║╚██████╔╝╚██████╔╝   ██║   ███████╗██║  ██║"},
		{"╚═╝  ╚═╝╚═╝", "    ╚═╝  ╚═╝ ╚═════╝  ╚═════╝    ╚═╝   ╚══════╝╚═╝  ╚═╝"},
	}

	cyan.Println("╔════════════════════════════════════════════════════════════════════╗")
	for _, line := range art {
		cyan.Print("║  ")
		hiCyan.Print(line[0])
		magenta.Print(line[1])
		cyan.Println(" ║")
	}
	cyan.Println("╠════════════════════════════════════════════════════════════════════╣")

	cyan.Print("║  ")
	yellow.Print("PROMPT ROUTER")
	dim.Print("  │  ")
	white.Print("openai · anthropic · gemini · grok")
	dim.Print("  │  ")
	white.Print(Version)
	plain("   ")
	cyan.Println("║")

	cyan.Println("╚════════════════════════════════════════════════════════════════════╝")

	plain("\n")
}
