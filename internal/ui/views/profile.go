package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/smmsclient/smms/internal/domain"
)

type ProfileViewModel struct {
	width   int
	height  int
	profile *domain.Profile
}

func NewProfileView() *ProfileViewModel {
	return &ProfileViewModel{}
}

func (m *ProfileViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ProfileViewModel) SetProfile(p *domain.Profile) {
	m.profile = p
}

func (m *ProfileViewModel) Profile() *domain.Profile {
	return m.profile
}

func (m *ProfileViewModel) View() string {
	if m.profile == nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true).
			Render("No profile loaded")
	}
	p := m.profile

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	verified := "no"
	if p.EmailVerified {
		verified = "yes"
	}
	groupExpire := p.GroupExpire
	if groupExpire == "" || groupExpire == "0000-00-00" {
		groupExpire = "-"
	}

	rows := [][2]string{
		{"Username", p.Username},
		{"Email", p.Email},
		{"Email verified", verified},
		{"Role", p.Role},
		{"Group expires", groupExpire},
		{"Disk usage", m.diskUsage()},
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)
	b.WriteString(titleStyle.Render("Profile"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.quotaBar(max(10, min(50, m.width-24))))

	return b.String()
}

func (m *ProfileViewModel) diskUsage() string {
	p := m.profile
	if p.DiskLimitRaw > 0 {
		return fmt.Sprintf("%s / %s",
			humanize.Bytes(uint64(max(p.DiskUsageRaw, 0))),
			humanize.Bytes(uint64(p.DiskLimitRaw)))
	}
	if p.DiskUsage != "" || p.DiskLimit != "" {
		return fmt.Sprintf("%s / %s", p.DiskUsage, p.DiskLimit)
	}
	return "-"
}

func (m *ProfileViewModel) quotaBar(width int) string {
	ratio := m.profile.QuotaRatio()
	filled := int(ratio * float64(width))
	filled = clamp(filled, 0, width)

	color := lipgloss.Color("#10B981")
	switch {
	case ratio >= 0.9:
		color = lipgloss.Color("#EF4444")
	case ratio >= 0.7:
		color = lipgloss.Color("#F59E0B")
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", width-filled))
	return bar + fmt.Sprintf(" %.1f%%", ratio*100)
}
