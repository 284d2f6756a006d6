package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer renders markdown for the terminal, falling back to the raw text
// if glamour cannot be initialised.
type Renderer struct {
	width int
	tr    *glamour.TermRenderer
}

func NewRenderer() *Renderer {
	r := &Renderer{}
	r.SetWidth(80)
	return r
}

func (r *Renderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width && r.tr != nil {
		return
	}
	r.width = width

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.tr = nil
		return
	}
	r.tr = tr
}

func (r *Renderer) Render(text string) string {
	if text == "" {
		return ""
	}
	if r.tr == nil {
		return text
	}

	out, err := r.tr.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
