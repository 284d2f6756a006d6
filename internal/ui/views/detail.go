package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/smmsclient/smms/internal/domain"
	"github.com/smmsclient/smms/internal/ui/markdown"
)

type DetailViewModel struct {
	viewport viewport.Model
	renderer *markdown.Renderer
	image    *domain.Image
	width    int
	height   int
	active   bool
}

func NewDetailView() *DetailViewModel {
	return &DetailViewModel{
		viewport: viewport.New(0, 0),
		renderer: markdown.NewRenderer(),
	}
}

func (m *DetailViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-10)
	m.renderer.SetWidth(width - 4)
	if m.active {
		m.updateViewport()
	}
}

func (m *DetailViewModel) Activate(img domain.Image) {
	m.active = true
	m.image = &img
	m.updateViewport()
	m.viewport.GotoTop()
}

func (m *DetailViewModel) Deactivate() {
	m.active = false
	m.image = nil
}

func (m *DetailViewModel) IsActive() bool {
	return m.active
}

func (m *DetailViewModel) Image() *domain.Image {
	return m.image
}

func (m *DetailViewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *DetailViewModel) View() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)

	help := helpStyle.Render("\nj/k: Scroll | c: Copy URL | m: Copy Markdown | o: Open | d: Delete | q/Esc: Back")
	return m.viewport.View() + "\n" + help
}

func (m *DetailViewModel) updateViewport() {
	if m.image == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderer.Render(ImageMarkdown(*m.image)))
}

// EmbedMarkdown is the snippet used to embed img in a markdown document.
func EmbedMarkdown(img domain.Image) string {
	return fmt.Sprintf("![%s](%s)", img.Filename, img.URL)
}

func EmbedHTML(img domain.Image) string {
	return fmt.Sprintf(`<img src="%s" alt="%s" />`, img.URL, img.Filename)
}

func EmbedBBCode(img domain.Image) string {
	return fmt.Sprintf("[img]%s[/img]", img.URL)
}

// ImageMarkdown builds the detail card for img.
func ImageMarkdown(img domain.Image) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", img.Filename)

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Size | %s |\n", humanize.Bytes(uint64(max(img.Size, 0))))
	fmt.Fprintf(&b, "| Dimensions | %d x %d |\n", img.Width, img.Height)
	if !img.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "| Uploaded | %s (%s) |\n", img.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(img.CreatedAt))
	}
	fmt.Fprintf(&b, "| Hash | `%s` |\n", img.Hash)
	if img.Storename != "" {
		fmt.Fprintf(&b, "| Stored as | `%s` |\n", img.Storename)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Links\n\n- URL: %s\n", img.URL)
	if img.Page != "" {
		fmt.Fprintf(&b, "- Page: %s\n", img.Page)
	}
	if img.DeleteURL != "" {
		fmt.Fprintf(&b, "- Delete: %s\n", img.DeleteURL)
	}
	b.WriteString("\n## Embed\n\n")

	for _, s := range []struct{ label, snippet string }{
		{"Markdown", EmbedMarkdown(img)},
		{"HTML", EmbedHTML(img)},
		{"BBCode", EmbedBBCode(img)},
	} {
		fmt.Fprintf(&b, "**%s**\n\n```\n%s\n```\n\n", s.label, s.snippet)
	}

	return b.String()
}
