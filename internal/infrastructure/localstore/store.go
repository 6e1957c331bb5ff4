// Package localstore is a small JSON key-value file for client-side state
// that must survive restarts.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"volunteerhub/internal/ports/output"
)

var _ output.KeyValueStore = (*Store)(nil)

// Store keeps all keys in memory and rewrites the whole file on change.
type Store struct {
	path string
	mu   sync.Mutex
	data map[string]json.RawMessage
}

// Open loads path, treating a missing file as empty.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: map[string]json.RawMessage{}}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Get(key string, dst any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode key %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode key %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data[key]
	s.data[key] = raw
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *Store) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.flush()
}

// flush writes to a temp file in the same directory and renames it over path.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
