package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoSession is returned when no usable session is stored.
var ErrNoSession = errors.New("not signed in")

// Session is the signed-in state of a client. It is passed explicitly to
// every authenticated call.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the session carries a token that has not expired
// at now.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && s.UserID > 0 && now.Before(s.ExpiresAt)
}

// Clear forgets every field of the session.
func (s *Session) Clear() {
	*s = Session{}
}

// DefaultSessionPath returns the per-user location of the stored session.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "fintrack", "session.json"), nil
}

// Save writes the session to path, readable only by the current user.
func (s Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// LoadSession reads a stored session. A missing file, or a session that
// has expired at now, yields ErrNoSession.
func LoadSession(path string, now time.Time) (Session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if !s.Valid(now) {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// RemoveSession deletes the stored session. Removing a missing file is
// not an error.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
