package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Console palette.
var (
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
	colorMuted   = lipgloss.Color("#6C7086")
	colorTitle   = lipgloss.Color("#7C3AED")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

// Status marks.
var (
	markOK    = successStyle.Render("✓")
	markFail  = errorStyle.Render("✗")
	markWarn  = warningStyle.Render("!")
	markNone  = mutedStyle.Render("-")
	markPhase = mutedStyle.Render("→")
)

// ErrorText styles a fatal error for the entry point.
func ErrorText(msg string) string {
	return errorStyle.Render("Error: " + msg)
}
