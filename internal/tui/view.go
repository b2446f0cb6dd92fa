package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nexsoft/nexup/internal/config"
)

// View renders the whole screen: title, configuration list, status line,
// and the log tail, with popups overlaid when active.
func (m Model) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string

	// Title line - centered
	title := TitleStyle.Render("nexSoft Update & QC")
	lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, title))
	lines = append(lines, "")

	lines = append(lines, SectionStyle.Render("Configuration"))
	for i, f := range m.fields {
		lines = append(lines, m.renderFieldLine(i, f, width))
	}
	lines = append(lines, "")

	lines = append(lines, SectionStyle.Render("Options"))
	for i, f := range m.flags {
		lines = append(lines, m.renderFlagLine(i, f, width))
	}
	lines = append(lines, "")

	lines = append(lines, m.renderStartLine(width))
	lines = append(lines, "")

	lines = append(lines, m.renderStatusLine(width))

	// Log tail fills whatever height remains above the help footer. The
	// help bubble truncates itself via its Width field.
	helpLine := HelpStyle.Render(m.help.View(m.keys))
	logRoom := height - len(lines) - 2
	if logRoom < 0 {
		logRoom = 0
	}
	for _, line := range m.logBuf.Tail(logRoom) {
		lines = append(lines, clip(line, width))
	}

	lines = append(lines, helpLine)

	content := strings.Join(lines, "\n")
	screen := BackgroundStyle(m.theme, m.mode).
		Width(width).
		Height(height).
		Render(content)

	// Popup states replace the screen with a centered modal on the same
	// background, like a drawn-over window.
	switch m.state {
	case stateEditing:
		return m.centerPopup(width, height, m.renderEditPopup(width))
	case stateConfirmingQuit:
		return m.centerPopup(width, height, m.renderConfirmPopup())
	}
	return screen
}

// renderFieldLine renders one configuration field row. An empty serial
// number shows a <REQUIRED> marker since the job refuses to start without
// it. The raw line is clipped before styling so truncation can never cut
// through an escape sequence.
func (m Model) renderFieldLine(i int, f config.FieldSpec, width int) string {
	value := m.store.Get(f.Key)
	display := value
	if display == "" {
		display = "<empty>"
		if f.Key == config.KeySerialNumber {
			display = "<REQUIRED>"
		}
	}

	marker := " "
	if m.cursor == i {
		marker = ">"
	}
	line := clip(fmt.Sprintf("%s %s %s", marker, padLabel(f.Label), display), width)

	switch {
	case m.cursor == i:
		return SelectedStyle.Render(line)
	case f.Key == config.KeySerialNumber && value == "":
		return RequiredStyle.Render(line)
	}
	return line
}

// renderFlagLine renders one boolean option row.
func (m Model) renderFlagLine(i int, f config.FlagSpec, width int) string {
	state := "OFF"
	if m.store.GetFlag(f.Key) {
		state = "ON"
	}

	marker := " "
	if m.cursor == len(m.fields)+i {
		marker = ">"
	}
	line := clip(fmt.Sprintf("%s %s [%s]", marker, padLabel(f.Label), state), width)

	if m.cursor == len(m.fields)+i {
		return SelectedStyle.Render(line)
	}
	return line
}

func (m Model) renderStartLine(width int) string {
	if m.cursor == m.startIndex() {
		return SelectedStyle.Render(clip("> ▶ Start", width))
	}
	return StartStyle.Render(clip("  ▶ Start", width))
}

func (m Model) renderStatusLine(width int) string {
	status := m.message
	if m.mode == ModeWorking {
		status = m.spinner.View() + " " + status
		// Spinner output is pre-styled; skip clipping rather than risk
		// cutting its escape sequences.
		return StatusStyle.Render(status)
	}
	return StatusStyle.Render(clip(status, width))
}

// renderEditPopup renders the modal text editor for the focused field.
func (m Model) renderEditPopup(width int) string {
	popupWidth := width - 8
	if popupWidth > MaxPopupWidth {
		popupWidth = MaxPopupWidth
	}

	label := m.editingLabel()
	body := lipgloss.JoinVertical(lipgloss.Left,
		SectionStyle.Render("Edit "+label),
		"",
		m.input.View(),
		"",
		HelpStyle.Render("enter save · esc cancel"),
	)
	return PopupStyle.Width(popupWidth).Render(body)
}

func (m Model) renderConfirmPopup() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		ConfirmStyle.Render("A job is still running."),
		"",
		"Quit anyway and kill it? (y/N)",
	)
	return PopupStyle.Render(body)
}

// centerPopup places a popup in the middle of a full-size canvas filled
// with the current background color.
func (m Model) centerPopup(width, height int, popup string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, popup,
		lipgloss.WithWhitespaceBackground(backgroundColor(m.theme, m.mode)))
}

func (m Model) editingLabel() string {
	return config.FieldLabel(m.editingKey)
}

// padLabel left-aligns labels into a fixed column.
func padLabel(label string) string {
	if len(label) >= ListLabelWidth {
		return label
	}
	return label + strings.Repeat(" ", ListLabelWidth-len(label))
}
