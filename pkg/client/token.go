package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the persisted login state. The JSON keys match the browser storage keys.
type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token,omitempty"`
}

// TokenStore persists the access/refresh pair between calls.
type TokenStore interface {
	Load() (Tokens, error)
	Save(tokens Tokens) error
	Clear() error
}

// MemoryTokenStore keeps tokens for the lifetime of the process.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens Tokens
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, nil
}

// Save keeps the previous refresh token when the new pair carries none.
func (s *MemoryTokenStore) Save(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tokens.Refresh == "" {
		tokens.Refresh = s.tokens.Refresh
	}
	s.tokens = tokens
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	return nil
}

// FileTokenStore keeps tokens in a JSON file readable only by the owner.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath is ~/.config/smartkheti/tokens.json, or the OS equivalent.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "smartkheti", "tokens.json"), nil
}

func (s *FileTokenStore) Load() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileTokenStore) load() (Tokens, error) {
	var tokens Tokens
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tokens, nil
		}
		return tokens, err
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return Tokens{}, err
	}
	return tokens, nil
}

func (s *FileTokenStore) Save(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tokens.Refresh == "" {
		if prev, err := s.load(); err == nil {
			tokens.Refresh = prev.Refresh
		}
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsAuthenticated reports whether the stored access token is present and unexpired.
// The signature is not verified; the server does that. An expired or malformed
// token clears the store.
func IsAuthenticated(store TokenStore, now time.Time) bool {
	tokens, err := store.Load()
	if err != nil || tokens.Access == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokens.Access, claims); err != nil {
		_ = store.Clear()
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		_ = store.Clear()
		return false
	}
	if exp != nil && exp.Time.Before(now) {
		_ = store.Clear()
		return false
	}
	return true
}
