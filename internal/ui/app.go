package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smmsclient/smms/internal/domain"
	"github.com/smmsclient/smms/internal/logger"
	"github.com/smmsclient/smms/internal/promise"
	"github.com/smmsclient/smms/internal/smms"
	"github.com/smmsclient/smms/internal/ui/components"
	"github.com/smmsclient/smms/internal/ui/views"
)

type ViewState int

const (
	ViewLogin ViewState = iota
	ViewMain
)

type Tab int

const (
	TabHistory Tab = iota
	TabUpload
	TabProfile
	tabCount
)

var tabNames = []string{"History", "Upload", "Profile"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "unknown"
	}
	return tabNames[t]
}

type Options struct {
	// Username pre-fills the login form.
	Username string
	Actions  Actions
}

type Model struct {
	state    ViewState
	tab      Tab
	page     int
	width    int
	height   int
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	spinning bool

	topBar      *components.TopBarModel
	statusBar   *components.StatusBarModel
	commandBar  *components.CommandBarModel
	loginView   *views.LoginViewModel
	historyView *views.HistoryViewModel
	uploadView  *views.UploadViewModel
	profileView *views.ProfileViewModel
	detailView  *views.DetailViewModel
	confirmView *views.ConfirmViewModel
	logsView    *views.LogsViewModel

	host     domain.ImageHost
	sessions domain.SessionRepository
	actions  Actions
	ctx      context.Context
	registry *CommandRegistry

	login   *promise.Slot[string]
	profile *promise.Slot[*domain.Profile]
	history *promise.Slot[[]domain.Image]
	upload  *promise.Slot[*domain.Image]
	remove  *promise.Slot[string]
	applied applied

	// Inputs of the tasks currently held by the login and upload slots.
	loginUser  string
	uploadPath string
}

// NewModel builds the application model. sessions must already be loaded;
// a cached token skips the login form.
func NewModel(host domain.ImageHost, sessions domain.SessionRepository, opts Options) Model {
	if opts.Actions.Copy == nil || opts.Actions.Open == nil {
		defaults := DefaultActions()
		if opts.Actions.Copy == nil {
			opts.Actions.Copy = defaults.Copy
		}
		if opts.Actions.Open == nil {
			opts.Actions.Open = defaults.Open
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(warningColor)

	m := Model{
		state:       ViewLogin,
		tab:         TabHistory,
		page:        1,
		keys:        DefaultKeyMap,
		help:        help.New(),
		spinner:     sp,
		topBar:      components.NewTopBar(tabNames),
		statusBar:   components.NewStatusBar(),
		commandBar:  components.NewCommandBar(),
		loginView:   views.NewLoginView(opts.Username),
		historyView: views.NewHistoryView(),
		uploadView:  views.NewUploadView(),
		profileView: views.NewProfileView(),
		detailView:  views.NewDetailView(),
		confirmView: views.NewConfirmView(),
		logsView:    views.NewLogsView(),
		host:        host,
		sessions:    sessions,
		actions:     opts.Actions,
		ctx:         context.Background(),
		registry:    NewCommandRegistry(),
		login:       promise.NewSlot[string](taskLogin),
		profile:     promise.NewSlot[*domain.Profile](taskProfile),
		history:     promise.NewSlot[[]domain.Image](taskHistory),
		upload:      promise.NewSlot[*domain.Image](taskUpload),
		remove:      promise.NewSlot[string](taskDelete),
	}

	// A cached token stands in for a finished login.
	if session := sessions.Current(); session.LoggedIn() {
		m.state = ViewMain
		m.applied.login = m.login.Set(session.Token)
	}
	return m
}

type startupMsg struct{}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return startupMsg{} }
}

func (m Model) isInInputMode() bool {
	if m.commandBar.IsActive() || m.logsView.IsActive() || m.confirmView.IsActive() {
		return true
	}
	if m.state == ViewLogin {
		return true
	}
	if m.detailView.IsActive() {
		return false
	}
	switch m.tab {
	case TabHistory:
		return m.historyView.IsFiltering()
	case TabUpload:
		return m.uploadView.Focused()
	}
	return false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m, pollCmd := m.pollTasks()
	m.syncViews()
	return m, tea.Batch(cmd, pollCmd)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.topBar.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.commandBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.loginView.SetSize(msg.Width, msg.Height)
		m.historyView.SetSize(msg.Width, msg.Height)
		m.uploadView.SetSize(msg.Width, msg.Height)
		m.profileView.SetSize(msg.Width, msg.Height)
		m.detailView.SetSize(msg.Width, msg.Height)
		m.confirmView.SetSize(msg.Width, msg.Height)
		m.logsView.SetSize(msg.Width, msg.Height)
		return m, nil

	case startupMsg:
		if m.state == ViewMain {
			logger.Log("UI: Cached session found, loading history")
			return m.enterMain()
		}
		return m, nil

	case taskDoneMsg:
		if !m.accepts(msg) {
			logger.Log("UI: Ignoring stale %s result (task %s, gen %d)", msg.Kind, msg.ID, msg.Gen)
		}
		m.logsView.Refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forwardToView(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.isInInputMode() {
		switch {
		case m.commandBar.IsActive():
			switch key {
			case "enter":
				return m.handleCommand()
			case "esc":
				m.commandBar.Deactivate()
				return m, nil
			}
			return m, m.commandBar.Update(msg)

		case m.logsView.IsActive():
			switch key {
			case "esc", "q":
				m.logsView.Deactivate()
				return m, nil
			}
			return m, m.logsView.Update(msg)

		case m.confirmView.IsActive():
			switch key {
			case "enter":
				return m.resolveConfirm()
			case "esc":
				m.confirmView.Deactivate()
				return m, nil
			}
			return m, m.confirmView.Update(msg)

		case m.state == ViewLogin:
			if key == "enter" {
				return m.submitLogin()
			}
			return m, m.loginView.Update(msg)

		case m.tab == TabHistory && m.historyView.IsFiltering():
			switch key {
			case "enter":
				m.historyView.ApplyFilter()
				return m, nil
			case "esc":
				m.historyView.ClearFilter()
				return m, nil
			}
			return m, m.historyView.Update(msg)

		case m.tab == TabUpload && m.uploadView.Focused():
			switch key {
			case "enter":
				return m.submitUpload(m.uploadView.Path())
			case "esc":
				m.uploadView.Blur()
				return m, nil
			}
			return m, m.uploadView.Update(msg)
		}
	}

	if m.detailView.IsActive() && (key == "esc" || key == "q") {
		m.detailView.Deactivate()
		return m, nil
	}

	if newModel, cmd, handled := m.registry.HandleKey(m, msg); handled {
		return newModel, cmd
	}

	return m.forwardToView(msg)
}

func (m Model) forwardToView(msg tea.Msg) (Model, tea.Cmd) {
	if m.state == ViewLogin {
		return m, m.loginView.Update(msg)
	}
	if m.detailView.IsActive() {
		return m, m.detailView.Update(msg)
	}
	switch m.tab {
	case TabHistory:
		return m, m.historyView.Update(msg)
	case TabUpload:
		return m, m.uploadView.Update(msg)
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	m.syncViews()

	var content string
	switch {
	case m.logsView.IsActive():
		content = m.logsView.View()
	case m.confirmView.IsActive():
		content = m.confirmView.View()
	case m.state == ViewLogin:
		content = m.loginView.View()
	case m.detailView.IsActive():
		content = m.detailView.View()
	default:
		content = m.tabView()
	}

	topBar := m.topBar.View()
	bottom := m.statusBar.View()
	if commandBar := m.commandBar.View(); commandBar != "" {
		bottom = commandBar
	}

	return topBar + "\n" + content + "\n" + bottom
}

func (m Model) tabView() string {
	loading := func(what string) string {
		return LoadingStyle.Render(fmt.Sprintf("%s Loading %s...", m.spinner.View(), what))
	}

	switch m.tab {
	case TabHistory:
		if m.history.Pending() && m.historyView.Len() == 0 {
			return loading("upload history")
		}
		return m.historyView.View()
	case TabUpload:
		return m.uploadView.View()
	case TabProfile:
		if m.profile.Pending() && m.profileView.Profile() == nil {
			return loading("profile")
		}
		return BorderStyle.Render(m.profileView.View())
	}
	return ""
}

// syncViews pushes per-frame state (pending tasks, spinner frame, help)
// into the components.
func (m Model) syncViews() {
	frame := m.spinner.View()

	m.loginView.SetLoading(m.login.Pending(), frame)
	if m.upload.Pending() {
		m.uploadView.SetUploading(m.uploadPath, frame)
	} else {
		m.uploadView.SetUploading("", "")
	}

	var busy []string
	for _, s := range []struct {
		pending bool
		label   string
	}{
		{m.login.Pending(), "logging in"},
		{m.history.Pending(), "history"},
		{m.profile.Pending(), "profile"},
		{m.upload.Pending(), "uploading"},
		{m.remove.Pending(), "deleting"},
	} {
		if s.pending {
			busy = append(busy, s.label)
		}
	}
	if len(busy) > 0 {
		m.statusBar.SetBusy(frame + " " + strings.Join(busy, ", "))
	} else {
		m.statusBar.SetBusy("")
	}

	m.topBar.SetActiveTab(int(m.tab))
	m.topBar.SetPage(m.page)
	if m.state == ViewLogin {
		m.topBar.SetHelp(HelpStyle.Render("enter: log in | tab: next field | ctrl+c: quit"))
	} else {
		m.topBar.SetHelp(m.help.View(m.keys))
	}
}

func (m Model) busy() bool {
	return m.login.Pending() || m.profile.Pending() || m.history.Pending() ||
		m.upload.Pending() || m.remove.Pending()
}

func (m Model) accepts(msg taskDoneMsg) bool {
	switch msg.Kind {
	case taskLogin:
		return m.login.Accept(msg.Gen)
	case taskProfile:
		return m.profile.Accept(msg.Gen)
	case taskHistory:
		return m.history.Accept(msg.Gen)
	case taskUpload:
		return m.upload.Accept(msg.Gen)
	case taskDelete:
		return m.remove.Accept(msg.Gen)
	}
	return false
}

// track waits for t and keeps the spinner running while it is pending.
func (m Model) track(t promise.Ticket) (Model, tea.Cmd) {
	cmd := waitFor(t)
	if !m.spinning {
		m.spinning = true
		cmd = tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m Model) enterMain() (Model, tea.Cmd) {
	m.state = ViewMain
	m.tab = TabHistory
	m.page = 1

	m, historyCmd := m.fetchHistory(false)
	m, profileCmd := m.fetchProfile(false)
	return m, tea.Batch(historyCmd, profileCmd)
}

func (m Model) submitLogin() (Model, tea.Cmd) {
	if m.login.Pending() {
		return m, nil
	}

	username, password := m.loginView.Credentials()
	if username == "" || password == "" {
		m.loginView.SetError("username and password are required")
		return m, nil
	}
	m.loginView.SetError("")
	m.loginUser = username

	host, ctx := m.host, m.ctx
	logger.Log("UI: Logging in as %s", username)
	t := m.login.Restart(func() (string, error) {
		return host.Token(ctx, username, password)
	})
	return m.track(t)
}

// fetchHistory loads the current page. Without force it only starts when
// nothing is held for the history yet.
func (m Model) fetchHistory(force bool) (Model, tea.Cmd) {
	host, ctx, page := m.host, m.ctx, m.page
	fn := func() ([]domain.Image, error) {
		return host.UploadHistory(ctx, page)
	}

	if force {
		return m.track(m.history.Restart(fn))
	}
	t, started := m.history.Start(fn)
	if !started {
		return m, nil
	}
	return m.track(t)
}

func (m Model) fetchProfile(force bool) (Model, tea.Cmd) {
	host, ctx := m.host, m.ctx
	fn := func() (*domain.Profile, error) {
		return host.Profile(ctx)
	}

	if force {
		return m.track(m.profile.Restart(fn))
	}
	t, started := m.profile.Start(fn)
	if !started {
		return m, nil
	}
	return m.track(t)
}

func (m Model) submitUpload(path string) (Model, tea.Cmd) {
	if path == "" {
		m.statusBar.SetMessage("No file selected", true)
		return m, nil
	}
	if m.upload.Pending() {
		m.statusBar.SetMessage("An upload is already in progress", true)
		return m, nil
	}

	m.uploadView.Blur()
	m.uploadView.SetPath(path)
	m.uploadPath = path

	host, ctx := m.host, m.ctx
	logger.Log("UI: Uploading %s", path)
	t := m.upload.Restart(func() (*domain.Image, error) {
		return host.Upload(ctx, path)
	})
	return m.track(t)
}

func (m Model) deleteImage(img domain.Image) (Model, tea.Cmd) {
	if m.remove.Pending() {
		m.statusBar.SetMessage("A delete is already in progress", true)
		return m, nil
	}

	host, ctx, hash := m.host, m.ctx, img.Hash
	logger.Log("UI: Deleting %s (%s)", img.Filename, hash)
	t := m.remove.Restart(func() (string, error) {
		return hash, host.Delete(ctx, hash)
	})
	return m.track(t)
}

func (m Model) logout() (Model, tea.Cmd) {
	if err := m.sessions.Clear(); err != nil {
		logger.LogError("LOGOUT", "session", err)
		m.statusBar.SetMessage(fmt.Sprintf("Failed to log out: %v", err), true)
		return m, nil
	}

	m.login.Clear()
	m.profile.Clear()
	m.history.Clear()
	m.upload.Clear()
	m.remove.Clear()

	m.historyView.ClearFilter()
	m.historyView.SetImages(nil)
	m.profileView.SetProfile(nil)
	m.uploadView.Reset()
	m.detailView.Deactivate()
	m.loginView.Reset()
	m.topBar.SetUser("")

	m.state = ViewLogin
	m.tab = TabHistory
	m.page = 1
	m.statusBar.SetMessage("Logged out", false)
	logger.Log("UI: Logged out")
	return m, nil
}

func (m Model) resolveConfirm() (Model, tea.Cmd) {
	action := m.confirmView.Action()
	confirmed := m.confirmView.Confirmed()
	img := m.confirmView.Image()
	m.confirmView.Deactivate()

	if !confirmed {
		return m, nil
	}

	switch action {
	case views.ConfirmLogout:
		return m.logout()
	case views.ConfirmDelete:
		if img != nil {
			return m.deleteImage(*img)
		}
	}
	return m, nil
}

// pollTasks applies every settled result that has not been applied yet.
// Slots only hold their current task, so superseded results never reach
// this point.
func (m Model) pollTasks() (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if res, ok := m.login.Poll(); ok && m.login.Gen() != m.applied.login {
		m.applied.login = m.login.Gen()
		m, cmd = m.applyLogin(res)
		cmds = append(cmds, cmd)
	}
	if res, ok := m.history.Poll(); ok && m.history.Gen() != m.applied.history {
		m.applied.history = m.history.Gen()
		m = m.applyHistory(res)
	}
	if res, ok := m.profile.Poll(); ok && m.profile.Gen() != m.applied.profile {
		m.applied.profile = m.profile.Gen()
		m = m.applyProfile(res)
	}
	if res, ok := m.upload.Poll(); ok && m.upload.Gen() != m.applied.upload {
		m.applied.upload = m.upload.Gen()
		m = m.applyUpload(res)
	}
	if res, ok := m.remove.Poll(); ok && m.remove.Gen() != m.applied.remove {
		m.applied.remove = m.remove.Gen()
		m, cmd = m.applyDelete(res)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) applyLogin(res *promise.Result[string]) (Model, tea.Cmd) {
	if !res.OK() {
		logger.LogError("LOGIN", m.loginUser, res.Err)
		m.loginView.SetError(res.Err.Error())
		return m, nil
	}

	if err := m.sessions.Save(domain.Session{Token: res.Value}); err != nil {
		logger.LogError("SAVE_SESSION", m.loginUser, err)
		m.login.Clear()
		m.loginView.SetError(fmt.Sprintf("failed to save session: %v", err))
		return m, nil
	}

	m.applied.login = m.login.Set(res.Value)
	m.loginView.Reset()
	m.topBar.SetUser(m.loginUser)
	m.statusBar.SetMessage(fmt.Sprintf("Logged in as %s", m.loginUser), false)
	return m.enterMain()
}

func (m Model) applyHistory(res *promise.Result[[]domain.Image]) Model {
	if !res.OK() {
		logger.LogError("HISTORY", fmt.Sprintf("page %d", m.page), res.Err)
		m.statusBar.SetMessage(res.Err.Error(), true)
		return m
	}

	m.historyView.SetImages(res.Value)
	m.statusBar.SetMessage(fmt.Sprintf("Loaded %d images (page %d)", len(res.Value), m.page), false)
	return m
}

func (m Model) applyProfile(res *promise.Result[*domain.Profile]) Model {
	if !res.OK() {
		logger.LogError("PROFILE", "", res.Err)
		m.statusBar.SetMessage(res.Err.Error(), true)
		return m
	}

	m.profileView.SetProfile(res.Value)
	if res.Value != nil && res.Value.Username != "" {
		m.topBar.SetUser(res.Value.Username)
	}
	return m
}

func (m Model) applyUpload(res *promise.Result[*domain.Image]) Model {
	if res.OK() && res.Value == nil {
		res = &promise.Result[*domain.Image]{Err: smms.ErrMissingData}
	}
	if !res.OK() {
		logger.LogError("UPLOAD", m.uploadPath, res.Err)
		var apiErr *smms.APIError
		if errors.As(res.Err, &apiErr) && apiErr.IsDuplicate() {
			m.uploadView.SetError(apiErr.Error(), apiErr.ExistingURL)
		} else {
			m.uploadView.SetError(res.Err.Error(), "")
		}
		m.statusBar.SetMessage(res.Err.Error(), true)
		return m
	}

	m.uploadView.SetResult(res.Value)
	// Next visit to the history tab picks up the new image.
	m.history.Clear()
	m.statusBar.SetMessage(fmt.Sprintf("Uploaded %s", res.Value.Filename), false)
	return m
}

func (m Model) applyDelete(res *promise.Result[string]) (Model, tea.Cmd) {
	if !res.OK() {
		logger.LogError("DELETE", res.Value, res.Err)
		m.statusBar.SetMessage(res.Err.Error(), true)
		return m, nil
	}

	if img := m.detailView.Image(); img != nil && img.Hash == res.Value {
		m.detailView.Deactivate()
	}
	m.statusBar.SetMessage(fmt.Sprintf("Deleted %s", res.Value), false)
	return m.fetchHistory(true)
}

func (m Model) handleCommand() (Model, tea.Cmd) {
	input := m.commandBar.Value()
	m.commandBar.Deactivate()

	cmd := ParseCommand(input)
	logger.Log("UI: Executing command: %s", strings.TrimSpace(input))
	return m.registry.ExecuteCommand(m, cmd)
}

// selectedImage is the image the per-image actions apply to.
func (m Model) selectedImage() *domain.Image {
	if m.detailView.IsActive() {
		return m.detailView.Image()
	}
	switch m.tab {
	case TabHistory:
		return m.historyView.GetSelectedImage()
	case TabUpload:
		return m.uploadView.Result()
	}
	return nil
}

func (m Model) selectedURL() string {
	if img := m.selectedImage(); img != nil {
		return img.URL
	}
	if m.tab == TabUpload && !m.detailView.IsActive() {
		return m.uploadView.ResultURL()
	}
	return ""
}
