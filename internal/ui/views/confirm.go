package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smmsclient/smms/internal/domain"
)

type ConfirmAction int

const (
	ConfirmNone ConfirmAction = iota
	ConfirmLogout
	ConfirmDelete
)

// ConfirmViewModel is a yes/no modal guarding logout and delete.
type ConfirmViewModel struct {
	active      bool
	width       int
	height      int
	action      ConfirmAction
	image       *domain.Image
	selectedIdx int
}

var confirmOptions = []string{"Cancel", "Confirm"}

func NewConfirmView() *ConfirmViewModel {
	return &ConfirmViewModel{}
}

func (m *ConfirmViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ConfirmViewModel) ActivateLogout() {
	m.active = true
	m.action = ConfirmLogout
	m.image = nil
	m.selectedIdx = 0
}

func (m *ConfirmViewModel) ActivateDelete(img domain.Image) {
	m.active = true
	m.action = ConfirmDelete
	m.image = &img
	m.selectedIdx = 0
}

func (m *ConfirmViewModel) Deactivate() {
	m.active = false
	m.action = ConfirmNone
	m.image = nil
	m.selectedIdx = 0
}

func (m *ConfirmViewModel) IsActive() bool {
	return m.active
}

func (m *ConfirmViewModel) Action() ConfirmAction {
	return m.action
}

func (m *ConfirmViewModel) Image() *domain.Image {
	return m.image
}

// Confirmed reports whether the highlighted option is the affirmative one.
func (m *ConfirmViewModel) Confirmed() bool {
	return m.selectedIdx == 1
}

func (m *ConfirmViewModel) Update(msg tea.Msg) tea.Cmd {
	if !m.active {
		return nil
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "left", "h", "shift+tab":
			m.selectedIdx = 0
		case "right", "l", "tab":
			m.selectedIdx = 1
		case "y":
			m.selectedIdx = 1
		case "n":
			m.selectedIdx = 0
		}
	}
	return nil
}

func (m *ConfirmViewModel) View() string {
	if !m.active {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Padding(1, 0)

	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	switch m.action {
	case ConfirmLogout:
		b.WriteString(titleStyle.Render("Log out"))
		b.WriteString("\n\n")
		b.WriteString(infoStyle.Render("The cached token will be removed from this machine."))
	case ConfirmDelete:
		b.WriteString(titleStyle.Render("Delete image"))
		b.WriteString("\n\n")
		if m.image != nil {
			b.WriteString(infoStyle.Render(fmt.Sprintf("File: %s", m.image.Filename)))
			b.WriteString("\n")
			b.WriteString(infoStyle.Render(fmt.Sprintf("Hash: %s", m.image.Hash)))
			b.WriteString("\n\n")
		}
		warningStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
		b.WriteString(warningStyle.Render("⚠ This cannot be undone"))
	}
	b.WriteString("\n\n")

	for i, label := range confirmOptions {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Padding(0, 1)
		marker := "○"
		if i == m.selectedIdx {
			style = style.Foreground(lipgloss.Color("#7C3AED")).Bold(true)
			marker = "●"
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %s", marker, label)))
	}
	b.WriteString("\n\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
	b.WriteString(helpStyle.Render("←→/y/n: Choose | Enter: Accept | Esc: Cancel"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7C3AED")).
		Padding(1, 2).
		Width(min(64, max(20, m.width-4)))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(b.String()))
}
