package logger

import "github.com/charmbracelet/lipgloss"

// Level colors.
var (
	slate  = lipgloss.Color("#667085")
	red    = lipgloss.Color("#D93025")
	yellow = lipgloss.Color("#F59E0B")
)

// Level icons.
const (
	iconError   = "✗"
	iconWarning = "!"
)
