package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smmsclient/smms/internal/domain"
	"github.com/smmsclient/smms/internal/logger"
)

func newTestRepo(t *testing.T) *LocalRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	repo, err := NewLocalRepository(path)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	return repo
}

func TestNewLocalRepositoryRejectsEmptyPath(t *testing.T) {
	if _, err := NewLocalRepository(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadMissingFileCreatesEmptyFile(t *testing.T) {
	repo := newTestRepo(t)

	session := repo.Load()
	if session.LoggedIn() {
		t.Fatalf("expected no session, got %+v", session)
	}

	info, err := os.Stat(repo.Path())
	if err != nil {
		t.Fatalf("expected cache file to be created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty cache file, got %d bytes", info.Size())
	}

	// The empty file from the first run must still read as no session.
	if repo.Load().LoggedIn() {
		t.Error("expected empty file to load as no session")
	}
}

func TestLoadEmptyFileLogsNoError(t *testing.T) {
	repo := newTestRepo(t)
	repo.Load()

	for _, contents := range []string{"", "\n  \n"} {
		if err := os.WriteFile(repo.Path(), []byte(contents), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		before := len(logger.GetLogs())

		if repo.Load().LoggedIn() {
			t.Errorf("expected %q to load as no session", contents)
		}
		for _, entry := range logger.GetLogs()[before:] {
			if strings.HasPrefix(entry.Message, "[ERROR]") {
				t.Errorf("unexpected error logged for %q: %s", contents, entry.Message)
			}
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Save(domain.Session{Token: "14ac5499cfdd2bb2859e4476d2e5b1d2bad079bf"}); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	reopened, err := NewLocalRepository(repo.Path())
	if err != nil {
		t.Fatalf("Failed to reopen repository: %v", err)
	}

	session := reopened.Load()
	if session.Token != "14ac5499cfdd2bb2859e4476d2e5b1d2bad079bf" {
		t.Errorf("Expected token to round-trip, got %q", session.Token)
	}
}

func TestSaveWritesExpectedFormat(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Save(domain.Session{Token: "abc"}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	data, _ := os.ReadFile(repo.Path())
	if string(data) != `{"token":"abc"}` {
		t.Errorf("unexpected file content: %s", data)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	data, _ = os.ReadFile(repo.Path())
	if string(data) != `{"token":null}` {
		t.Errorf("unexpected file content after clear: %s", data)
	}
	if repo.Current().LoggedIn() {
		t.Error("expected in-memory session to be cleared")
	}
}

func TestLoadMalformedFileIsNoSession(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if repo.Load().LoggedIn() {
		t.Error("expected malformed file to load as no session")
	}
}

func TestLoadNullToken(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte(`{"token":null}`), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if repo.Load().LoggedIn() {
		t.Error("expected null token to load as no session")
	}
}

func TestSaveFailsLoudly(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewLocalRepository(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	// A directory in place of the file makes the rename fail.
	if err := os.Mkdir(repo.Path(), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := repo.Save(domain.Session{Token: "abc"}); err == nil {
		t.Fatal("expected save error to propagate")
	}
	if repo.Current().LoggedIn() {
		t.Error("expected in-memory session to stay unchanged after failed save")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected temp file to be cleaned up, found %d entries", len(entries))
	}
}

func TestTokenSource(t *testing.T) {
	repo := newTestRepo(t)
	ts := repo.TokenSource("Basic")

	if _, err := ts.Token(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if err := repo.Save(domain.Session{Token: "abc"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "abc" || tok.Type() != "Basic" {
		t.Errorf("unexpected token %+v (type %s)", tok, tok.Type())
	}
}
