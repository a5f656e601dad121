package theme

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains the shared terminal report styles.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Bar      lipgloss.Style
	BarEmpty lipgloss.Style
	Card     lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(LightGray).
			Width(18),

		Value: lipgloss.NewStyle().
			Foreground(White).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		Bar: lipgloss.NewStyle().
			Foreground(BrightPurple),

		BarEmpty: lipgloss.NewStyle().
			Foreground(DarkGray),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGray).
			Padding(0, 1),
	}
}

// RenderBar renders value as a horizontal bar of width cells scaled against total.
func (s *Styles) RenderBar(value, total int64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 && value > 0 {
		filled = int(value * int64(width) / total)
		if filled == 0 {
			filled = 1
		}
		if filled > width {
			filled = width
		}
	}
	return s.Bar.Render(strings.Repeat("█", filled)) + s.BarEmpty.Render(strings.Repeat("░", width-filled))
}
