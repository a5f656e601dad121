package theme

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Purple       = lipgloss.Color("#A855F7")
	BrightPurple = lipgloss.Color("#C084FC")

	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")

	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Info    = lipgloss.Color("#3B82F6")
)

// StatusColor maps a task status label to its display color.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "completed":
		return Success
	case "in_progress":
		return Info
	default:
		return Warning
	}
}
