// Package ui renders terminal output: styled messages, tables, prompts, the
// token picker and the live balance dashboard.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: settled, success
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: pending, confirmation
	ColorError     = lipgloss.Color("#FF4444") // red: failed
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorAccent    = lipgloss.Color("#9B5DE5") // purple: titles, token symbols
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleAccent  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)
)

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a progress message.
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Hint formats a suggestion for what to run next.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

func Addr(a string) string { return StyleAddress.Render(a) }

func Val(v string) string { return StyleValue.Render(v) }

func Meta(m string) string { return StyleMeta.Render(m) }

// Symbol formats a token symbol.
func Symbol(s string) string { return StyleAccent.Render(s) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
