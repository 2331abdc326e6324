package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/clarois/node-banana-kie/pkg/logging"
)

// Store provides durable persistence for the handshake-in-progress and
// the current token set. It owns a single JSON file; no other component
// writes it.
//
// SECURITY: The store handles bearer credentials. The file is created
// with 0600 permissions (owner read/write only), its directory with
// 0700, and token values are never logged.
//
// Writes use an atomic temp-file-and-rename replace, so a concurrent
// reader in this process observes either the old or the new committed
// value, never a torn one. The store assumes single-process ownership;
// processes sharing the file must serialize writes externally.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given file path. The file does
// not need to exist yet; a missing file reads as empty.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// ReadHandshake returns the pending handshake, or nil if none exists.
func (s *Store) ReadHandshake() (*Handshake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.read()
	if err != nil {
		return nil, err
	}
	return sf.Auth, nil
}

// WriteHandshake persists a new handshake, overwriting any prior
// unconsumed one. The handshake is advisory state, not a queue.
func (s *Store) WriteHandshake(h *Handshake) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.read()
	if err != nil {
		return err
	}
	sf.Auth = h
	return s.write(sf)
}

// ClearHandshake removes any pending handshake. Clearing an empty store
// is not an error.
func (s *Store) ClearHandshake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.read()
	if err != nil {
		return err
	}
	if sf.Auth == nil {
		return nil
	}
	sf.Auth = nil
	return s.write(sf)
}

// ReadTokens returns the current token set, or nil if none is stored.
func (s *Store) ReadTokens() (*TokenSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.read()
	if err != nil {
		return nil, err
	}
	return sf.Tokens, nil
}

// WriteTokens persists a token set and clears any pending handshake: a
// token write ends the authorization attempt it belongs to.
func (s *Store) WriteTokens(ts *TokenSet) error {
	if ts == nil || ts.AccessToken == "" {
		return &StoreError{Op: "write", Err: errors.New("refusing to persist empty access token")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.read()
	if err != nil {
		return err
	}
	sf.Tokens = ts
	sf.Auth = nil
	return s.write(sf)
}

// ClearTokens removes the stored token set. Clearing an empty store is
// not an error.
func (s *Store) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.read()
	if err != nil {
		return err
	}
	if sf.Tokens == nil {
		return nil
	}
	sf.Tokens = nil
	return s.write(sf)
}

// read loads the store file. A file that does not exist yet is treated
// as empty, not as an error. Any other failure (permissions, corrupt
// JSON) surfaces as a StoreError.
// REQUIRES: s.mu must be held by the caller.
func (s *Store) read() (*storeFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &storeFile{}, nil
		}
		return nil, &StoreError{Op: "read", Err: err}
	}

	var sf storeFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, &StoreError{Op: "read", Err: fmt.Errorf("corrupt store file %s: %w", s.path, err)}
	}
	return &sf, nil
}

// write replaces the store file atomically: the payload is written to a
// temp file in the same directory and renamed over the target.
// REQUIRES: s.mu must be held by the caller.
func (s *Store) write(sf *storeFile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &StoreError{Op: "write", Err: fmt.Errorf("failed to create store directory: %w", err)}
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return &StoreError{Op: "write", Err: fmt.Errorf("failed to marshal store: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StoreError{Op: "write", Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreError{Op: "write", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "write", Err: err}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "write", Err: fmt.Errorf("failed to replace store file: %w", err)}
	}

	logging.Debug("Store", "Persisted store (tokens=%t, handshake=%t)", sf.Tokens != nil, sf.Auth != nil)
	return nil
}
