package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// file is the on-disk layout of the credentials file.
type file struct {
	Cookies map[string]string `json:"cookies"`
}

// Store persists a Session to a single JSON file.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the credentials file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved session. Any failure to read or decode the file, or a
// file without a "cookies" object, is reported as no saved session.
func (s *Store) Load() (Session, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}, false
	}

	var saved file
	if err := json.Unmarshal(data, &saved); err != nil {
		return Session{}, false
	}
	if saved.Cookies == nil {
		return Session{}, false
	}

	return New(saved.Cookies), true
}

// Save overwrites the credentials file with sess.
func (s *Store) Save(sess Session) error {
	data, err := json.Marshal(file{Cookies: sess.Cookies()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Clear deletes the credentials file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
