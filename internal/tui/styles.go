package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme selects the color scheme.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
)

// Mode reflects job status coloring.
type Mode int

const (
	ModeNeutral Mode = iota
	ModeWorking
	ModeOK
)

// Layout constants
const (
	MinTerminalWidth = 40 // Below this the layout clips hard but must not crash
	ListLabelWidth   = 30 // Fixed label column, matches the value column offset
	MaxPopupWidth    = 80
)

// screenColors is the fixed six-entry (theme, mode) color lookup. There is
// no runtime color computation beyond this table.
var screenColors = map[Theme]map[Mode]struct{ bg, fg lipgloss.Color }{
	ThemeDark: {
		ModeNeutral: {bg: lipgloss.Color("0"), fg: lipgloss.Color("15")},
		ModeWorking: {bg: lipgloss.Color("5"), fg: lipgloss.Color("15")},
		ModeOK:      {bg: lipgloss.Color("6"), fg: lipgloss.Color("0")},
	},
	ThemeLight: {
		ModeNeutral: {bg: lipgloss.Color("4"), fg: lipgloss.Color("15")},
		ModeWorking: {bg: lipgloss.Color("1"), fg: lipgloss.Color("15")},
		ModeOK:      {bg: lipgloss.Color("2"), fg: lipgloss.Color("0")},
	},
}

// BackgroundStyle returns the full-screen background for a theme/mode pair.
func BackgroundStyle(theme Theme, mode Mode) lipgloss.Style {
	c := screenColors[theme][mode]
	return lipgloss.NewStyle().Background(c.bg).Foreground(c.fg)
}

// backgroundColor is the bare background color, used to fill popup margins.
func backgroundColor(theme Theme, mode Mode) lipgloss.Color {
	return screenColors[theme][mode].bg
}

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Reverse(true)

	StartStyle = lipgloss.NewStyle().
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// RequiredStyle marks the mandatory field while it is empty. It reuses
	// the "working" color as a warning, matching the banner behavior.
	RequiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Bold(true)

	PopupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)

	ConfirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11"))
)

// clip truncates a rendered line to the given width, appending an ellipsis
// when something was cut. Lines are never wrapped.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
