package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	loginFieldUsername = iota
	loginFieldPassword
	loginFieldCount
)

type LoginViewModel struct {
	usernameInput textinput.Model
	passwordInput textinput.Model
	inputFocus    int
	loading       bool
	spinner       string
	err           string
	width         int
	height        int
}

func NewLoginView(username string) *LoginViewModel {
	usernameInput := textinput.New()
	usernameInput.Placeholder = "Username or email"
	usernameInput.CharLimit = 128
	usernameInput.SetValue(username)
	usernameInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Placeholder = "Password"
	passwordInput.CharLimit = 128
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	m := &LoginViewModel{
		usernameInput: usernameInput,
		passwordInput: passwordInput,
	}
	if username != "" {
		m.inputFocus = loginFieldPassword
		m.focusCurrent()
	}
	return m
}

func (m *LoginViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetLoading locks the form while a login is in flight.
func (m *LoginViewModel) SetLoading(loading bool, spinner string) {
	m.loading = loading
	m.spinner = spinner
}

func (m *LoginViewModel) IsLoading() bool {
	return m.loading
}

func (m *LoginViewModel) SetError(err string) {
	m.err = err
}

func (m *LoginViewModel) Error() string {
	return m.err
}

// Reset clears the password and any error, keeping the username.
func (m *LoginViewModel) Reset() {
	m.passwordInput.SetValue("")
	m.err = ""
	m.loading = false
	m.inputFocus = loginFieldPassword
	if m.usernameInput.Value() == "" {
		m.inputFocus = loginFieldUsername
	}
	m.focusCurrent()
}

func (m *LoginViewModel) Credentials() (string, string) {
	return strings.TrimSpace(m.usernameInput.Value()), m.passwordInput.Value()
}

func (m *LoginViewModel) Update(msg tea.Msg) tea.Cmd {
	if m.loading {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			m.nextInput()
			return nil
		case "shift+tab", "up":
			m.prevInput()
			return nil
		}
	}

	var cmd tea.Cmd
	switch m.inputFocus {
	case loginFieldUsername:
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	case loginFieldPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return cmd
}

func (m *LoginViewModel) nextInput() {
	m.inputFocus = (m.inputFocus + 1) % loginFieldCount
	m.focusCurrent()
}

func (m *LoginViewModel) prevInput() {
	m.inputFocus = (m.inputFocus - 1 + loginFieldCount) % loginFieldCount
	m.focusCurrent()
}

func (m *LoginViewModel) focusCurrent() {
	m.usernameInput.Blur()
	m.passwordInput.Blur()
	switch m.inputFocus {
	case loginFieldUsername:
		m.usernameInput.Focus()
	case loginFieldPassword:
		m.passwordInput.Focus()
	}
}

func (m *LoginViewModel) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Render("Log in to sm.ms")

	b.WriteString(title + "\n\n")
	b.WriteString("Username:\n")
	b.WriteString(m.usernameInput.View() + "\n\n")
	b.WriteString("Password:\n")
	b.WriteString(m.passwordInput.View() + "\n\n")

	if m.loading {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).
			Render(m.spinner+" Logging in...") + "\n\n")
	}

	if m.err != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true).
			Render(m.err) + "\n\n")
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("Tab: Next field | Enter: Log in | Ctrl+C: Quit")
	b.WriteString(help)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7C3AED")).
		Padding(1, 2).
		Width(min(60, max(20, m.width-4)))

	if m.width == 0 {
		return box.Render(b.String())
	}
	return lipgloss.Place(m.width, max(0, m.height-8), lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}
