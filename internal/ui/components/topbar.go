package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TopBarModel struct {
	width     int
	tabs      []string
	activeTab int
	username  string
	page      int
	help      string
}

var (
	titleStyle       = lipgloss.NewStyle().Padding(1, 2, 0, 2)
	titleOrangeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	valueWhiteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	descGrayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	activeTabStyle   = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F9FAFB")).
				Background(lipgloss.Color("#7C3AED")).
				Bold(true).
				Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("246")).
				Padding(0, 1)
)

func NewTopBar(tabs []string) *TopBarModel {
	return &TopBarModel{tabs: tabs, page: 1}
}

func (m *TopBarModel) SetWidth(width int) {
	m.width = width
}

func (m *TopBarModel) SetActiveTab(idx int) {
	m.activeTab = idx
}

func (m *TopBarModel) SetUser(username string) {
	m.username = username
}

func (m *TopBarModel) SetPage(page int) {
	m.page = page
}

// SetHelp sets the pre-rendered key help line.
func (m *TopBarModel) SetHelp(help string) {
	m.help = help
}

func (m *TopBarModel) View() string {
	user := "not logged in"
	if m.username != "" {
		user = m.username
	}

	title := titleOrangeStyle.Render("sm.ms") + "  " +
		descGrayStyle.Render("user: ") + valueWhiteStyle.Render(user) + "  " +
		descGrayStyle.Render(fmt.Sprintf("page: %d", m.page))

	var tabs []string
	for i, t := range m.tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if i == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	lines := []string{title, "", strings.Join(tabs, " ")}
	if m.help != "" {
		lines = append(lines, m.help)
	}

	return titleStyle.Width(m.width).Render(strings.Join(lines, "\n"))
}
