package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/smmsclient/smms/internal/domain"
)

type HistoryViewModel struct {
	table table.Model

	// Source data as returned by the service; never reordered here.
	source []domain.Image

	visible []domain.Image

	width       int
	height      int
	filterInput textinput.Model
	filtering   bool
	filterText  string
}

func NewHistoryView() *HistoryViewModel {
	t := table.New(
		table.WithColumns(historyColumns(40)),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		Bold(false).
		Foreground(lipgloss.Color("#6B7280"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#F59E0B")).
		Background(lipgloss.Color("#1F2937")).
		Bold(true)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Filter by filename or hash..."
	ti.CharLimit = 100

	return &HistoryViewModel{
		table:       t,
		filterInput: ti,
	}
}

func historyColumns(nameWidth int) []table.Column {
	return []table.Column{
		{Title: "Filename", Width: nameWidth},
		{Title: "Size", Width: 10},
		{Title: "Dimensions", Width: 12},
		{Title: "Uploaded", Width: 16},
		{Title: "Hash", Width: 12},
	}
}

func (m *HistoryViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(1, height-12))

	const fixed = 10 + 12 + 16 + 12 + 10
	m.table.SetColumns(historyColumns(clamp(width-fixed, 16, 80)))
	m.rebuild()
}

func (m *HistoryViewModel) SetImages(images []domain.Image) {
	m.source = append([]domain.Image(nil), images...)
	m.rebuild()
	m.table.SetCursor(0)
}

func (m *HistoryViewModel) Len() int {
	return len(m.source)
}

// source → filter → visible → rows
func (m *HistoryViewModel) rebuild() {
	m.visible = m.filter(m.source)
	m.table.SetRows(m.toRows(m.visible))
}

func (m *HistoryViewModel) filter(images []domain.Image) []domain.Image {
	if m.filterText == "" {
		return images
	}

	needle := strings.ToLower(m.filterText)
	var out []domain.Image
	for _, img := range images {
		if strings.Contains(strings.ToLower(img.Filename), needle) ||
			strings.Contains(strings.ToLower(img.Hash), needle) {
			out = append(out, img)
		}
	}
	return out
}

func (m *HistoryViewModel) toRows(images []domain.Image) []table.Row {
	rows := make([]table.Row, len(images))
	nameWidth := m.table.Columns()[0].Width

	for i, img := range images {
		uploaded := "-"
		if !img.CreatedAt.IsZero() {
			uploaded = humanize.Time(img.CreatedAt)
		}
		rows[i] = table.Row{
			truncateString(img.Filename, nameWidth),
			humanize.Bytes(uint64(max(img.Size, 0))),
			fmt.Sprintf("%dx%d", img.Width, img.Height),
			uploaded,
			img.Hash,
		}
	}
	return rows
}

func (m *HistoryViewModel) GetSelectedImage() *domain.Image {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}
	img := m.visible[idx]
	return &img
}

func (m *HistoryViewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.filtering {
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.filterText = m.filterInput.Value()
		m.rebuild()
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return cmd
}

func (m *HistoryViewModel) ActivateFilter() {
	m.filtering = true
	m.filterInput.SetValue(m.filterText)
	m.filterInput.Focus()
}

func (m *HistoryViewModel) ApplyFilter() {
	m.filterText = m.filterInput.Value()
	m.filtering = false
	m.filterInput.Blur()
	m.rebuild()
}

func (m *HistoryViewModel) ClearFilter() {
	m.filterText = ""
	m.filterInput.SetValue("")
	m.filtering = false
	m.filterInput.Blur()
	m.rebuild()
}

func (m *HistoryViewModel) IsFiltering() bool {
	return m.filtering
}

func (m *HistoryViewModel) FilterText() string {
	return m.filterText
}

func (m *HistoryViewModel) View() string {
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("\n" + m.helpText())

	if len(m.source) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true).
			Render("No uploads on this page")
		return empty + "\n" + help
	}

	content := m.table.View()
	if m.filtering {
		filterStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)
		content += "\n" + filterStyle.Render("Filter: ") + m.filterInput.View()
	}
	return content + help
}

func (m *HistoryViewModel) helpText() string {
	if m.filtering {
		return "Type to filter | Enter: Apply | Esc: Clear"
	}
	return "Enter: Details | c: Copy URL | o: Open | d: Delete | n/p: Page | r: Refresh | /: Filter"
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
