package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	authdomain "taskboard/internal/auth/domain"
)

// Session is the client's authentication state, persisted to a file between
// runs. It is passed explicitly to everything that needs it.
type Session struct {
	mu   sync.RWMutex
	path string

	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken,omitempty"`
	User         *authdomain.User `json:"user,omitempty"`
}

// DefaultSessionPath is TASKBOARD_SESSION_FILE or ~/.taskboard/session.json.
func DefaultSessionPath() (string, error) {
	if p := os.Getenv("TASKBOARD_SESSION_FILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".taskboard", "session.json"), nil
}

// LoadSession reads the session file. A missing file is an empty session.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		// a corrupt file is treated as logged out
		return &Session{path: path}, nil
	}
	return s, nil
}

// NewMemorySession is a session that is never written to disk.
func NewMemorySession() *Session {
	return &Session{}
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Token != ""
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Token
}

func (s *Session) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RefreshToken
}

func (s *Session) CurrentUser() *authdomain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.User
}

// Set stores a fresh login and persists it.
func (s *Session) Set(token, refreshToken string, user *authdomain.User) error {
	s.mu.Lock()
	s.Token = token
	s.RefreshToken = refreshToken
	s.User = user
	s.mu.Unlock()
	return s.save()
}

// SetUser replaces the cached profile.
func (s *Session) SetUser(user *authdomain.User) error {
	s.mu.Lock()
	s.User = user
	s.mu.Unlock()
	return s.save()
}

// Clear forgets the token and user and removes the file.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.Token = ""
	s.RefreshToken = ""
	s.User = nil
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Session) save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
