package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/smmsclient/smms/internal/domain"
)

type UploadViewModel struct {
	width     int
	height    int
	pathInput textinput.Model

	uploading string // path currently being uploaded
	spinner   string

	result       *domain.Image
	errorMessage string
	existingURL  string
}

func NewUploadView() *UploadViewModel {
	ti := textinput.New()
	ti.Placeholder = "/path/to/image.png"
	ti.CharLimit = 4096
	ti.Prompt = "File: "

	return &UploadViewModel{pathInput: ti}
}

func (m *UploadViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pathInput.Width = max(20, width-16)
}

func (m *UploadViewModel) Focus() tea.Cmd {
	return m.pathInput.Focus()
}

func (m *UploadViewModel) Blur() {
	m.pathInput.Blur()
}

func (m *UploadViewModel) Focused() bool {
	return m.pathInput.Focused()
}

// Path returns the entered path with surrounding quotes and a leading ~
// resolved, as terminals often paste dragged files that way.
func (m *UploadViewModel) Path() string {
	p := strings.TrimSpace(m.pathInput.Value())
	p = strings.Trim(p, `"'`)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func (m *UploadViewModel) SetPath(p string) {
	m.pathInput.SetValue(p)
	m.pathInput.CursorEnd()
}

func (m *UploadViewModel) SetUploading(path, spinner string) {
	m.uploading = path
	m.spinner = spinner
}

func (m *UploadViewModel) IsUploading() bool {
	return m.uploading != ""
}

func (m *UploadViewModel) SetResult(img *domain.Image) {
	m.result = img
	m.errorMessage = ""
	m.existingURL = ""
	m.pathInput.SetValue("")
}

// SetError records a failed upload. existingURL is set when the service
// reports the file was already uploaded.
func (m *UploadViewModel) SetError(msg, existingURL string) {
	m.result = nil
	m.errorMessage = msg
	m.existingURL = existingURL
}

func (m *UploadViewModel) Result() *domain.Image {
	return m.result
}

// ResultURL is the URL worth copying after the last attempt, if any.
func (m *UploadViewModel) ResultURL() string {
	if m.result != nil {
		return m.result.URL
	}
	return m.existingURL
}

func (m *UploadViewModel) Reset() {
	m.pathInput.SetValue("")
	m.uploading = ""
	m.result = nil
	m.errorMessage = ""
	m.existingURL = ""
}

func (m *UploadViewModel) Update(msg tea.Msg) tea.Cmd {
	if m.IsUploading() {
		return nil
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

func (m *UploadViewModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	b.WriteString(titleStyle.Render("Upload an image"))
	b.WriteString("\n\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n\n")

	switch {
	case m.IsUploading():
		loadingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
		b.WriteString(loadingStyle.Render(fmt.Sprintf("%s Uploading %s...", m.spinner, filepath.Base(m.uploading))))
	case m.result != nil:
		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
		b.WriteString(okStyle.Render("✓ Uploaded"))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("URL:    ") + valueStyle.Render(m.result.URL))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Size:   ") + valueStyle.Render(fmt.Sprintf("%s (%dx%d)", humanize.Bytes(uint64(max(m.result.Size, 0))), m.result.Width, m.result.Height)))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Delete: ") + valueStyle.Render(m.result.DeleteURL))
	case m.errorMessage != "":
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
		b.WriteString(errStyle.Render("✗ " + m.errorMessage))
		if m.existingURL != "" {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render("Existing URL: ") + valueStyle.Render(m.existingURL))
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
	help := "i: Edit path | Enter: Upload | Esc: Stop editing"
	if m.ResultURL() != "" {
		help += " | c: Copy URL | o: Open"
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(help))

	return b.String()
}
