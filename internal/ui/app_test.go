package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smmsclient/smms/internal/domain"
	"github.com/smmsclient/smms/internal/smms"
	"github.com/smmsclient/smms/internal/ui/views"
)

type mockHost struct {
	mu      sync.Mutex
	calls   map[string]int
	pages   []int
	deleted []string

	tokenFn   func(username, password string) (string, error)
	profileFn func() (*domain.Profile, error)
	historyFn func(page int) ([]domain.Image, error)
	uploadFn  func(path string) (*domain.Image, error)
	deleteFn  func(hash string) error
}

func newMockHost() *mockHost {
	return &mockHost{
		calls: make(map[string]int),
		tokenFn: func(username, password string) (string, error) {
			return "token-" + username, nil
		},
		profileFn: func() (*domain.Profile, error) {
			return &domain.Profile{Username: "alice", Email: "alice@example.com"}, nil
		},
		historyFn: func(page int) ([]domain.Image, error) {
			return testImages(), nil
		},
		uploadFn: func(path string) (*domain.Image, error) {
			return &domain.Image{Filename: "new.png", Hash: "newhash", URL: "https://i.example.com/new.png"}, nil
		},
		deleteFn: func(hash string) error {
			return nil
		},
	}
}

func (h *mockHost) record(op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[op]++
}

func (h *mockHost) count(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[op]
}

func (h *mockHost) Token(ctx context.Context, username, password string) (string, error) {
	h.record("token")
	return h.tokenFn(username, password)
}

func (h *mockHost) Profile(ctx context.Context) (*domain.Profile, error) {
	h.record("profile")
	return h.profileFn()
}

func (h *mockHost) UploadHistory(ctx context.Context, page int) ([]domain.Image, error) {
	h.record("history")
	h.mu.Lock()
	h.pages = append(h.pages, page)
	h.mu.Unlock()
	return h.historyFn(page)
}

func (h *mockHost) Upload(ctx context.Context, path string) (*domain.Image, error) {
	h.record("upload")
	return h.uploadFn(path)
}

func (h *mockHost) Delete(ctx context.Context, hash string) error {
	h.record("delete")
	h.mu.Lock()
	h.deleted = append(h.deleted, hash)
	h.mu.Unlock()
	return h.deleteFn(hash)
}

type mockSessions struct {
	session  domain.Session
	saveErr  error
	clearErr error
	saves    int
}

func (s *mockSessions) Load() domain.Session    { return s.session }
func (s *mockSessions) Current() domain.Session { return s.session }

func (s *mockSessions) Save(session domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.session = session
	return nil
}

func (s *mockSessions) Clear() error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.session = domain.Session{}
	return nil
}

func testImages() []domain.Image {
	return []domain.Image{
		{Filename: "cat.png", Hash: "hash1", URL: "https://i.example.com/cat.png", Size: 2048, Width: 100, Height: 80},
		{Filename: "dog.jpg", Hash: "hash2", URL: "https://i.example.com/dog.jpg", Size: 4096, Width: 640, Height: 480},
	}
}

type copied struct {
	mu    sync.Mutex
	texts []string
}

func (c *copied) copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func newTestModel(host *mockHost, sessions *mockSessions, clip *copied) Model {
	opts := Options{
		Username: "alice",
		Actions: Actions{
			Copy: clip.copy,
			Open: func(string) error { return nil },
		},
	}
	m := NewModel(host, sessions, opts)
	return step(m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// frameMsg is an otherwise ignored message used to drive a frame.
type frameMsg struct{}

func step(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyPress(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = step(m, msg)
	}
	return m
}

// settle waits until no task is pending and runs one frame so the results
// get applied.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.busy() {
		if time.Now().After(deadline) {
			t.Fatal("background tasks did not settle")
		}
		time.Sleep(time.Millisecond)
	}
	return step(m, frameMsg{})
}

func startLoggedIn(t *testing.T, host *mockHost, clip *copied) (Model, *mockSessions) {
	t.Helper()
	sessions := &mockSessions{session: domain.Session{Token: "cached"}}
	m := newTestModel(host, sessions, clip)
	m = step(m, m.Init()())
	m = settle(t, m)
	return m, sessions
}

func TestNewModel_NoSessionShowsLogin(t *testing.T) {
	host := newMockHost()
	m := newTestModel(host, &mockSessions{}, &copied{})
	m = step(m, m.Init()())

	if m.state != ViewLogin {
		t.Errorf("expected login view, got %v", m.state)
	}
	if host.count("history") != 0 {
		t.Error("expected no history fetch before login")
	}
}

func TestNewModel_CachedSessionSkipsLogin(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	if m.state != ViewMain {
		t.Fatalf("expected main view, got %v", m.state)
	}
	if m.historyView.Len() != 2 {
		t.Errorf("expected 2 images, got %d", m.historyView.Len())
	}
	if m.profileView.Profile() == nil {
		t.Error("expected profile to be loaded")
	}
	if host.count("history") != 1 || host.count("profile") != 1 {
		t.Errorf("expected one history and one profile fetch, got %v", host.calls)
	}
	if host.count("token") != 0 {
		t.Error("expected no token request with a cached session")
	}
	if res, ok := m.login.Poll(); !ok || res.Value == "" {
		t.Error("expected cached token to be held as the login result")
	}
}

func TestLogin_Success(t *testing.T) {
	host := newMockHost()
	sessions := &mockSessions{}
	m := newTestModel(host, sessions, &copied{})

	m = keyPress(m, "secret", "enter")
	m = settle(t, m)
	m = settle(t, m)

	if host.count("token") != 1 {
		t.Errorf("expected one token request, got %d", host.count("token"))
	}
	if sessions.session.Token != "token-alice" {
		t.Errorf("expected token to be saved, got %q", sessions.session.Token)
	}
	if m.state != ViewMain {
		t.Errorf("expected main view, got %v", m.state)
	}
	if m.historyView.Len() != 2 {
		t.Errorf("expected history to load after login, got %d images", m.historyView.Len())
	}
}

func TestLogin_ErrorShownVerbatim(t *testing.T) {
	host := newMockHost()
	host.tokenFn = func(string, string) (string, error) {
		return "", &smms.APIError{Code: "unauthorized", Message: "Username or password incorrect."}
	}
	sessions := &mockSessions{}
	m := newTestModel(host, sessions, &copied{})

	m = keyPress(m, "wrong", "enter")
	m = settle(t, m)

	if m.state != ViewLogin {
		t.Errorf("expected to stay on login view, got %v", m.state)
	}
	if got := m.loginView.Error(); got != "Username or password incorrect." {
		t.Errorf("expected message verbatim, got %q", got)
	}
	if sessions.saves != 0 {
		t.Error("expected no session save on failed login")
	}
}

func TestLogin_SaveFailureKeepsLoginForm(t *testing.T) {
	host := newMockHost()
	sessions := &mockSessions{saveErr: errors.New("disk full")}
	m := newTestModel(host, sessions, &copied{})

	m = keyPress(m, "secret", "enter")
	m = settle(t, m)

	if m.state != ViewLogin {
		t.Errorf("expected login view after save failure, got %v", m.state)
	}
	if m.loginView.Error() == "" {
		t.Error("expected save error to be shown")
	}
	if !m.login.Empty() {
		t.Error("expected login slot to be cleared")
	}
}

func TestLogin_RequiresCredentials(t *testing.T) {
	host := newMockHost()
	m := newTestModel(host, &mockSessions{}, &copied{})

	m = keyPress(m, "enter")

	if m.loginView.Error() == "" {
		t.Error("expected validation error")
	}
	if host.count("token") != 0 {
		t.Error("expected no token request")
	}
}

func TestFetchHistory_StartsOnlyOnceWhilePending(t *testing.T) {
	host := newMockHost()
	release := make(chan struct{})
	host.historyFn = func(page int) ([]domain.Image, error) {
		<-release
		return testImages(), nil
	}
	sessions := &mockSessions{session: domain.Session{Token: "cached"}}
	m := newTestModel(host, sessions, &copied{})
	m = step(m, m.Init()())

	gen := m.history.Gen()
	m = keyPress(m, "1", "1", "3", "1")
	if m.history.Gen() != gen {
		t.Errorf("expected no new history task, generation moved %d -> %d", gen, m.history.Gen())
	}

	close(release)
	m = settle(t, m)

	if n := host.count("history"); n != 1 {
		t.Errorf("expected exactly one history request, got %d", n)
	}
	if m.historyView.Len() != 2 {
		t.Errorf("expected 2 images, got %d", m.historyView.Len())
	}
}

func TestFetchHistory_StaleResultIgnored(t *testing.T) {
	host := newMockHost()
	release := make(chan struct{})
	finished := make(chan struct{})
	host.historyFn = func(page int) ([]domain.Image, error) {
		if page == 1 {
			defer close(finished)
			<-release
			return []domain.Image{{Filename: "stale.png", Hash: "stale"}}, nil
		}
		return []domain.Image{{Filename: "fresh.png", Hash: "fresh"}}, nil
	}
	sessions := &mockSessions{session: domain.Session{Token: "cached"}}
	m := newTestModel(host, sessions, &copied{})
	m = step(m, m.Init()())

	staleGen := m.history.Gen()
	m, _ = m.registry.ExecuteCommand(m, ParseCommand(":page 2"))
	m = settle(t, m)

	close(release)
	<-finished
	m = step(m, taskDoneMsg{Kind: taskHistory, Gen: staleGen})

	if m.history.Accept(staleGen) {
		t.Error("expected stale generation to be rejected")
	}
	img := m.historyView.GetSelectedImage()
	if img == nil || img.Hash != "fresh" {
		t.Errorf("expected page 2 result to stay, got %+v", img)
	}
	if m.page != 2 {
		t.Errorf("expected page 2, got %d", m.page)
	}
}

func TestRefresh_RestartsHistory(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	m = keyPress(m, "r")
	m = settle(t, m)

	if n := host.count("history"); n != 2 {
		t.Errorf("expected refresh to fetch again, got %d requests", n)
	}
}

func TestNextPage_FetchesFollowingPage(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	m = keyPress(m, "n")
	m = settle(t, m)
	m = keyPress(m, "p", "p")
	m = settle(t, m)

	host.mu.Lock()
	pages := append([]int(nil), host.pages...)
	host.mu.Unlock()

	want := []int{1, 2, 1}
	if len(pages) != len(want) {
		t.Fatalf("expected pages %v, got %v", want, pages)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("expected pages %v, got %v", want, pages)
			break
		}
	}
	if m.page != 1 {
		t.Errorf("expected page 1, got %d", m.page)
	}
}

func TestUpload_SuccessClearsHistory(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	m, _ = m.registry.ExecuteCommand(m, ParseCommand(":upload /tmp/new.png"))
	if m.tab != TabUpload {
		t.Errorf("expected upload tab, got %v", m.tab)
	}
	m = settle(t, m)

	if m.uploadView.Result() == nil {
		t.Fatal("expected upload result")
	}
	if !m.history.Empty() {
		t.Error("expected history slot to be cleared after upload")
	}

	m = keyPress(m, "1")
	m = settle(t, m)
	if n := host.count("history"); n != 2 {
		t.Errorf("expected history to be fetched again, got %d requests", n)
	}
}

func TestUpload_DuplicateShowsExistingURL(t *testing.T) {
	host := newMockHost()
	host.uploadFn = func(string) (*domain.Image, error) {
		return nil, &smms.APIError{
			Code:        smms.CodeImageRepeated,
			Message:     "Image upload repeated limit.",
			ExistingURL: "https://i.example.com/cat.png",
		}
	}
	m, _ := startLoggedIn(t, host, &copied{})

	m, _ = m.registry.ExecuteCommand(m, ParseCommand(":upload /tmp/cat.png"))
	m = settle(t, m)

	if got := m.uploadView.ResultURL(); got != "https://i.example.com/cat.png" {
		t.Errorf("expected existing URL, got %q", got)
	}
	if !m.statusBar.IsError() || m.statusBar.Message() != "Image upload repeated limit." {
		t.Errorf("expected error message verbatim, got %q", m.statusBar.Message())
	}
	if m.history.Empty() {
		t.Error("expected history to be kept after failed upload")
	}
}

func TestUpload_MissingDataIsAnError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"error from host", fmt.Errorf("POST /upload: %w", smms.ErrMissingData)},
		{"nil image", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newMockHost()
			host.uploadFn = func(string) (*domain.Image, error) { return nil, tt.err }
			m, _ := startLoggedIn(t, host, &copied{})

			m, _ = m.registry.ExecuteCommand(m, ParseCommand(":upload /tmp/cat.png"))
			m = settle(t, m)

			if m.uploadView.Result() != nil {
				t.Errorf("expected no upload result, got %+v", m.uploadView.Result())
			}
			if m.uploadView.ResultURL() != "" {
				t.Errorf("expected no URL, got %q", m.uploadView.ResultURL())
			}
			if !m.statusBar.IsError() || !strings.Contains(m.statusBar.Message(), smms.ErrMissingData.Error()) {
				t.Errorf("expected missing data error, got %q", m.statusBar.Message())
			}
			if m.history.Empty() {
				t.Error("expected history to be kept after failed upload")
			}
		})
	}
}

func TestUpload_RequiresPath(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	m = keyPress(m, "2", "enter")

	if host.count("upload") != 0 {
		t.Error("expected no upload without a path")
	}
	if !m.statusBar.IsError() {
		t.Error("expected an error in the status bar")
	}
}

func TestDelete_ConfirmAndRefetch(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	m = keyPress(m, "d")
	if !m.confirmView.IsActive() || m.confirmView.Action() != views.ConfirmDelete {
		t.Fatal("expected delete confirmation")
	}

	m = keyPress(m, "y", "enter")
	m = settle(t, m)
	m = settle(t, m)

	host.mu.Lock()
	deleted := append([]string(nil), host.deleted...)
	host.mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "hash1" {
		t.Errorf("expected hash1 to be deleted, got %v", deleted)
	}
	if n := host.count("history"); n != 2 {
		t.Errorf("expected history to be re-fetched after delete, got %d requests", n)
	}
}

func TestDelete_CancelDoesNothing(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	m = keyPress(m, "d", "enter")

	if m.confirmView.IsActive() {
		t.Error("expected confirmation to close")
	}
	if host.count("delete") != 0 {
		t.Error("expected no delete request")
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	host := newMockHost()
	m, sessions := startLoggedIn(t, host, &copied{})

	m = keyPress(m, "X")
	if !m.confirmView.IsActive() || m.confirmView.Action() != views.ConfirmLogout {
		t.Fatal("expected logout confirmation")
	}
	m = keyPress(m, "y", "enter")

	if sessions.session.LoggedIn() {
		t.Error("expected session to be cleared")
	}
	if m.state != ViewLogin {
		t.Errorf("expected login view, got %v", m.state)
	}
	if !m.login.Empty() || !m.history.Empty() || !m.profile.Empty() || !m.upload.Empty() || !m.remove.Empty() {
		t.Error("expected all slots to be cleared")
	}
	if m.historyView.Len() != 0 || m.profileView.Profile() != nil {
		t.Error("expected cached data to be dropped")
	}
}

func TestLogout_ClearFailureKeepsSession(t *testing.T) {
	host := newMockHost()
	m, sessions := startLoggedIn(t, host, &copied{})
	sessions.clearErr = errors.New("read-only file system")

	m = keyPress(m, "X", "y", "enter")

	if m.state != ViewMain {
		t.Errorf("expected to stay logged in, got %v", m.state)
	}
	if !m.statusBar.IsError() {
		t.Error("expected error in status bar")
	}
}

func TestCopyURL(t *testing.T) {
	host := newMockHost()
	clip := &copied{}
	m, _ := startLoggedIn(t, host, clip)

	m = keyPress(m, "c")

	if len(clip.texts) != 1 || clip.texts[0] != "https://i.example.com/cat.png" {
		t.Errorf("expected selected URL to be copied, got %v", clip.texts)
	}
}

func TestDetailView_CopyMarkdown(t *testing.T) {
	host := newMockHost()
	clip := &copied{}
	m, _ := startLoggedIn(t, host, clip)

	m = keyPress(m, "enter")
	if !m.detailView.IsActive() {
		t.Fatal("expected detail view")
	}
	m = keyPress(m, "m")

	want := "![cat.png](https://i.example.com/cat.png)"
	if len(clip.texts) != 1 || clip.texts[0] != want {
		t.Errorf("expected %q, got %v", want, clip.texts)
	}

	m = keyPress(m, "esc")
	if m.detailView.IsActive() {
		t.Error("expected esc to close the detail view")
	}
}

func TestProfileTab_ErrorGoesToStatusBar(t *testing.T) {
	host := newMockHost()
	host.profileFn = func() (*domain.Profile, error) {
		return nil, errors.New("request failed: connection refused")
	}
	m, _ := startLoggedIn(t, host, &copied{})

	m = keyPress(m, "3")

	if m.tab != TabProfile {
		t.Fatalf("expected profile tab, got %v", m.tab)
	}
	if host.count("profile") != 1 {
		t.Errorf("expected settled profile not to be re-fetched, got %d", host.count("profile"))
	}

	m = keyPress(m, "r")
	m = settle(t, m)

	if host.count("profile") != 2 {
		t.Errorf("expected refresh to fetch the profile again, got %d", host.count("profile"))
	}
	if !m.statusBar.IsError() || m.statusBar.Message() != "request failed: connection refused" {
		t.Errorf("expected profile error in status bar, got %q", m.statusBar.Message())
	}
	if m.profileView.Profile() != nil {
		t.Error("expected no profile")
	}
}

func TestView_RendersWithoutPanicking(t *testing.T) {
	host := newMockHost()
	m, _ := startLoggedIn(t, host, &copied{})

	for _, k := range []string{"3", "1", "2", "esc", "1", "enter"} {
		m = keyPress(m, k)
		if m.View() == "" {
			t.Errorf("empty view after %q", k)
		}
	}
}
