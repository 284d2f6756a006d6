package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type StatusBarModel struct {
	width   int
	message string
	isError bool
	busy    string
}

func NewStatusBar() *StatusBarModel {
	return &StatusBarModel{}
}

func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
}

func (m *StatusBarModel) SetMessage(message string, isError bool) {
	m.message = message
	m.isError = isError
}

func (m *StatusBarModel) ClearMessage() {
	m.message = ""
	m.isError = false
}

// SetBusy shows an activity indicator (e.g. a spinner frame and label) at
// the right edge; empty hides it.
func (m *StatusBarModel) SetBusy(indicator string) {
	m.busy = indicator
}

func (m *StatusBarModel) Message() string {
	return m.message
}

func (m *StatusBarModel) IsError() bool {
	return m.isError
}

func (m *StatusBarModel) View() string {
	content := " " + m.message
	right := ""
	if m.busy != "" {
		right = m.busy + " "
	}

	avail := m.width - lipgloss.Width(right)
	if lipgloss.Width(content) > avail && avail > 3 {
		content = truncateWidth(content, avail-3) + "..."
	} else if lipgloss.Width(content) < avail {
		content += strings.Repeat(" ", avail-lipgloss.Width(content))
	}

	bgColor := lipgloss.Color("#374151")
	if m.isError {
		bgColor = lipgloss.Color("#991B1B")
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB")).
		Background(bgColor).
		Width(m.width)

	return style.Render(content + right)
}

func truncateWidth(s string, width int) string {
	var b strings.Builder
	for _, r := range s {
		if lipgloss.Width(b.String()+string(r)) > width {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
