// Copyright 2024-2026 Aiku AI

package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Credential is one account's login material. Immutable once created. The
// JSON field names are the on-disk and control-channel wire format.
type Credential struct {
	AccountName  string `json:"login"`
	Password     string `json:"password"`
	SharedSecret string `json:"shared_secret"`
}

// Store persists the flat credential list to a single JSON file. The file
// is rewritten wholesale on every change; there is no incremental format.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given file path. The file does not
// need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted credential list. A missing file is not an error
// and yields an empty list.
func (s *Store) Load() ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var creds []Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	return creds, nil
}

// Save overwrites the store with the given credential list. The write goes
// through a temp file and rename so a crash never leaves a torn file.
func (s *Store) Save(creds []Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creds == nil {
		creds = []Credential{}
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".accounts-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp accounts file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write accounts file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close accounts file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace accounts file: %w", err)
	}
	return nil
}
