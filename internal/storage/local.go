package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/smmsclient/smms/internal/domain"
	"github.com/smmsclient/smms/internal/logger"
)

var ErrNoSession = errors.New("not logged in")

type LocalRepository struct {
	path    string
	session domain.Session
	mu      sync.RWMutex
}

func NewLocalRepository(path string) (*LocalRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("session file path is empty")
	}

	repo := &LocalRepository{path: path}
	if err := repo.ensureDir(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *LocalRepository) Path() string {
	return r.path
}

func (r *LocalRepository) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return nil
}

// Load reads the cache file. A missing file is created empty; a malformed
// or empty one is treated as no session.
func (r *LocalRepository) Load() domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session = domain.Session{}

	logger.LogFileOpen(r.path)
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.createEmpty()
		} else {
			logger.LogError("LOAD", r.path, err)
		}
		return r.session
	}

	// Load creates the file empty, so no bytes is simply no session yet.
	if len(bytes.TrimSpace(data)) == 0 {
		logger.Log("Session file %s is empty", r.path)
		return r.session
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		logger.LogError("UNMARSHAL", r.path, err)
		return r.session
	}

	if cf.Token != nil {
		r.session.Token = *cf.Token
	}
	logger.Log("Session loaded from %s (logged in: %t)", r.path, r.session.LoggedIn())
	return r.session
}

func (r *LocalRepository) createEmpty() {
	logger.LogFileWrite(r.path)
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		logger.LogError("CREATE", r.path, err)
		return
	}
	f.Close()
	logger.Log("Created empty session file %s", r.path)
}

func (r *LocalRepository) Current() domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.session
}

// Save overwrites the cache file with session.
func (r *LocalRepository) Save(session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cf cacheFile
	if session.Token != "" {
		token := session.Token
		cf.Token = &token
	}

	if err := r.write(cf); err != nil {
		return err
	}
	r.session = session
	return nil
}

func (r *LocalRepository) Clear() error {
	logger.Log("Clearing session")
	return r.Save(domain.Session{})
}

func (r *LocalRepository) write(cf cacheFile) error {
	data, err := json.Marshal(cf)
	if err != nil {
		logger.LogError("MARSHAL", r.path, err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(r.path), "."+uuid.New().String()+".tmp")
	logger.LogFileWrite(r.path)
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		logger.LogError("SAVE", tmp, err)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		logger.LogError("SAVE", r.path, err)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	logger.Log("Session saved to %s", r.path)
	return nil
}

// TokenSource exposes the current session token to an oauth2 transport.
func (r *LocalRepository) TokenSource(scheme string) oauth2.TokenSource {
	return &sessionTokenSource{repo: r, scheme: scheme}
}

type sessionTokenSource struct {
	repo   domain.SessionRepository
	scheme string
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	session := s.repo.Current()
	if !session.LoggedIn() {
		return nil, ErrNoSession
	}
	return &oauth2.Token{AccessToken: session.Token, TokenType: s.scheme}, nil
}
