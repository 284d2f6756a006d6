package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smmsclient/smms/internal/logger"
	"github.com/smmsclient/smms/internal/ui/views"
)

type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandQuit
	CommandUpload
	CommandPage
	CommandRefresh
	CommandLogout
	CommandLogs
	CommandTab
	CommandHelp
)

type Command struct {
	Type CommandType
	Name string
	Args []string
}

func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)

	if !strings.HasPrefix(input, ":") {
		return Command{Type: CommandUnknown}
	}

	input = strings.TrimPrefix(input, ":")
	parts := strings.Fields(input)

	if len(parts) == 0 {
		return Command{Type: CommandUnknown}
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "q", "quit":
		return Command{Type: CommandQuit, Name: cmd, Args: args}
	case "u", "upload":
		return Command{Type: CommandUpload, Name: cmd, Args: args}
	case "p", "page":
		return Command{Type: CommandPage, Name: cmd, Args: args}
	case "r", "refresh":
		return Command{Type: CommandRefresh, Name: cmd, Args: args}
	case "logout":
		return Command{Type: CommandLogout, Name: cmd, Args: args}
	case "logs":
		return Command{Type: CommandLogs, Name: cmd, Args: args}
	case "t", "tab":
		return Command{Type: CommandTab, Name: cmd, Args: args}
	case "h", "help":
		return Command{Type: CommandHelp, Name: cmd, Args: args}
	default:
		return Command{Type: CommandUnknown, Name: cmd, Args: args}
	}
}

type keyHandler func(m Model) (Model, tea.Cmd)

type keyCommand struct {
	binding key.Binding
	handler keyHandler
}

// CommandRegistry maps global key bindings and ":" commands to handlers.
// Handlers check their own context and are no-ops where they don't apply.
type CommandRegistry struct {
	keys []keyCommand
}

func NewCommandRegistry() *CommandRegistry {
	k := DefaultKeyMap
	return &CommandRegistry{
		keys: []keyCommand{
			{k.Quit, handleQuitKey},
			{k.Command, handleCommandKey},
			{k.Help, handleHelpKey},
			{k.Logs, handleLogsKey},
			{k.Logout, handleLogoutKey},
			{k.NextTab, handleNextTabKey},
			{k.PrevTab, handlePrevTabKey},
			{k.TabHistory, tabHandler(TabHistory)},
			{k.TabUpload, tabHandler(TabUpload)},
			{k.TabProfile, tabHandler(TabProfile)},
			{k.Refresh, handleRefreshKey},
			{k.NextPage, handleNextPageKey},
			{k.PrevPage, handlePrevPageKey},
			{k.Select, handleSelectKey},
			{k.Copy, handleCopyKey},
			{k.CopyMD, handleCopyMarkdownKey},
			{k.Open, handleOpenKey},
			{k.Delete, handleDeleteKey},
			{k.Edit, handleEditKey},
			{k.Filter, handleFilterKey},
		},
	}
}

func (r *CommandRegistry) HandleKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	for _, kc := range r.keys {
		if key.Matches(msg, kc.binding) {
			newModel, cmd := kc.handler(m)
			return newModel, cmd, true
		}
	}
	return m, nil, false
}

func (r *CommandRegistry) ExecuteCommand(m Model, cmd Command) (Model, tea.Cmd) {
	switch cmd.Type {
	case CommandQuit:
		return m, tea.Quit

	case CommandUpload:
		if m.state != ViewMain {
			return m, nil
		}
		path := strings.Join(cmd.Args, " ")
		m = m.switchTab(TabUpload)
		m.uploadView.SetPath(path)
		return m.submitUpload(m.uploadView.Path())

	case CommandPage:
		if len(cmd.Args) != 1 {
			m.statusBar.SetMessage("Usage: :page <n>", true)
			return m, nil
		}
		page, err := strconv.Atoi(cmd.Args[0])
		if err != nil || page < 1 {
			m.statusBar.SetMessage(fmt.Sprintf("Invalid page: %s", cmd.Args[0]), true)
			return m, nil
		}
		return m.gotoPage(page)

	case CommandRefresh:
		return handleRefreshKey(m)

	case CommandLogout:
		return handleLogoutKey(m)

	case CommandLogs:
		return handleLogsKey(m)

	case CommandTab:
		if len(cmd.Args) != 1 {
			m.statusBar.SetMessage("Usage: :tab history|upload|profile", true)
			return m, nil
		}
		for i, name := range tabNames {
			if strings.EqualFold(name, cmd.Args[0]) || cmd.Args[0] == strconv.Itoa(i+1) {
				return tabHandler(Tab(i))(m)
			}
		}
		m.statusBar.SetMessage(fmt.Sprintf("Unknown tab: %s", cmd.Args[0]), true)
		return m, nil

	case CommandHelp:
		return handleHelpKey(m)
	}

	if cmd.Name == "" {
		return m, nil
	}
	logger.Log("UI: Unknown command: %s", cmd.Name)
	m.statusBar.SetMessage(fmt.Sprintf("Unknown command: %s", cmd.Name), true)
	return m, nil
}

func handleQuitKey(m Model) (Model, tea.Cmd) {
	return m, tea.Quit
}

func handleCommandKey(m Model) (Model, tea.Cmd) {
	m.commandBar.Activate()
	return m, nil
}

func handleHelpKey(m Model) (Model, tea.Cmd) {
	m.help.ShowAll = !m.help.ShowAll
	return m, nil
}

func handleLogsKey(m Model) (Model, tea.Cmd) {
	m.logsView.Activate()
	return m, nil
}

func handleLogoutKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain {
		return m, nil
	}
	m.confirmView.ActivateLogout()
	return m, nil
}

func handleNextTabKey(m Model) (Model, tea.Cmd) {
	return tabHandler((m.tab + 1) % tabCount)(m)
}

func handlePrevTabKey(m Model) (Model, tea.Cmd) {
	return tabHandler((m.tab + tabCount - 1) % tabCount)(m)
}

// tabHandler switches to t and starts the fetch its content needs, unless
// one is already held.
func tabHandler(t Tab) keyHandler {
	return func(m Model) (Model, tea.Cmd) {
		if m.state != ViewMain {
			return m, nil
		}
		m = m.switchTab(t)
		switch t {
		case TabHistory:
			return m.fetchHistory(false)
		case TabProfile:
			return m.fetchProfile(false)
		case TabUpload:
			return m, m.uploadView.Focus()
		}
		return m, nil
	}
}

func (m Model) switchTab(t Tab) Model {
	m.detailView.Deactivate()
	m.uploadView.Blur()
	m.tab = t
	return m
}

func handleRefreshKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain {
		return m, nil
	}
	switch m.tab {
	case TabHistory:
		return m.fetchHistory(true)
	case TabProfile:
		return m.fetchProfile(true)
	}
	return m, nil
}

func handleNextPageKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain || m.tab != TabHistory || m.detailView.IsActive() {
		return m, nil
	}
	return m.gotoPage(m.page + 1)
}

func handlePrevPageKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain || m.tab != TabHistory || m.detailView.IsActive() || m.page <= 1 {
		return m, nil
	}
	return m.gotoPage(m.page - 1)
}

func (m Model) gotoPage(page int) (Model, tea.Cmd) {
	if m.state != ViewMain {
		return m, nil
	}
	m = m.switchTab(TabHistory)
	m.page = page
	m.historyView.SetImages(nil)
	return m.fetchHistory(true)
}

func handleSelectKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain || m.detailView.IsActive() {
		return m, nil
	}
	switch m.tab {
	case TabHistory:
		if img := m.historyView.GetSelectedImage(); img != nil {
			m.detailView.Activate(*img)
		}
	case TabUpload:
		return m.submitUpload(m.uploadView.Path())
	}
	return m, nil
}

func handleCopyKey(m Model) (Model, tea.Cmd) {
	return m.copyText(m.selectedURL(), "URL")
}

func handleCopyMarkdownKey(m Model) (Model, tea.Cmd) {
	img := m.selectedImage()
	if img == nil {
		return m, nil
	}
	return m.copyText(views.EmbedMarkdown(*img), "Markdown")
}

func (m Model) copyText(text, what string) (Model, tea.Cmd) {
	if m.state != ViewMain || text == "" {
		return m, nil
	}
	if err := m.actions.Copy(text); err != nil {
		logger.LogError("COPY", what, err)
		m.statusBar.SetMessage(fmt.Sprintf("Failed to copy %s: %v", what, err), true)
		return m, nil
	}
	m.statusBar.SetMessage(fmt.Sprintf("Copied %s to clipboard", what), false)
	return m, nil
}

func handleOpenKey(m Model) (Model, tea.Cmd) {
	url := m.selectedURL()
	if m.state != ViewMain || url == "" {
		return m, nil
	}
	if err := m.actions.Open(url); err != nil {
		logger.LogError("OPEN", url, err)
		m.statusBar.SetMessage(err.Error(), true)
		return m, nil
	}
	m.statusBar.SetMessage(fmt.Sprintf("Opened %s", url), false)
	return m, nil
}

func handleDeleteKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain {
		return m, nil
	}
	if !m.detailView.IsActive() && m.tab != TabHistory {
		return m, nil
	}
	if img := m.selectedImage(); img != nil {
		m.confirmView.ActivateDelete(*img)
	}
	return m, nil
}

func handleEditKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain || m.tab != TabUpload || m.detailView.IsActive() {
		return m, nil
	}
	return m, m.uploadView.Focus()
}

func handleFilterKey(m Model) (Model, tea.Cmd) {
	if m.state != ViewMain || m.tab != TabHistory || m.detailView.IsActive() {
		return m, nil
	}
	m.historyView.ActivateFilter()
	return m, nil
}
