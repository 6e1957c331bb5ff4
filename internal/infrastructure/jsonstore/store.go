// Package jsonstore keeps events and users in a single JSON document on disk,
// the same shape the mobile app's mock server used ({"events": [], "users": []}).
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"volunteerhub/internal/domain/entities"
)

const (
	tmpSuffix       = ".tmp"
	backupSuffix    = ".bak"
	filePermissions = 0o600
)

type document struct {
	Events []entities.Event `json:"events"`
	Users  []userRecord     `json:"users"`
}

type userRecord struct {
	ID       string        `json:"id"`
	Name     entities.Name `json:"name"`
	Email    string        `json:"email"`
	Mobile   string        `json:"mobile,omitempty"`
	Password string        `json:"password"`
}

// Store serializes every mutation under one mutex, so a read-check-write
// sequence (capacity check then append) is atomic for this process.
type Store struct {
	path string
	log  *zap.Logger
	now  func() time.Time

	mu  sync.RWMutex
	doc document
}

// Open loads path, creating an empty document when the file does not exist.
// Plaintext passwords found in a hand-edited file are hashed and written back.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{path: path, log: log, now: func() time.Time { return time.Now().UTC() }}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("store file not found, starting empty", zap.String("path", path))
		if err := s.save(s.doc); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read store: %w", err)
	}

	var doc document
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode store %s: %w", path, err)
		}
	}
	for i := range doc.Events {
		if doc.Events[i].VolunteersIDs == nil {
			doc.Events[i].VolunteersIDs = []string{}
		}
	}
	rehashed, err := hashPlaintextPasswords(doc.Users)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	if rehashed > 0 {
		log.Warn("hashed plaintext passwords in store file", zap.Int("users", rehashed))
		if err := s.save(s.doc); err != nil {
			return nil, err
		}
	}
	log.Info("store loaded",
		zap.String("path", path),
		zap.Int("events", len(doc.Events)),
		zap.Int("users", len(doc.Users)))
	return s, nil
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{log: zap.NewNop(), now: func() time.Time { return time.Now().UTC() }}
}

// Events returns the event repository view of the store.
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// mutate runs fn against a copy of the document and commits it only when fn
// succeeds and the copy is durably written.
func (s *Store) mutate(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *Store) read(fn func(doc *document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.doc)
}

// save writes doc to a temp file, keeps the previous file as a backup and
// renames the temp file into place. Caller holds the write lock.
func (s *Store) save(doc document) error {
	if s.path == "" {
		return nil
	}
	if doc.Events == nil {
		doc.Events = []entities.Event{}
	}
	if doc.Users == nil {
		doc.Users = []userRecord{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	tmp := s.path + tmpSuffix
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("open temp store: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temp store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp store: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := os.Rename(s.path, s.path+backupSuffix); err != nil {
			s.log.Warn("failed to create store backup", zap.String("path", s.path), zap.Error(err))
		}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit store: %w", err)
	}
	return nil
}

func (d document) clone() document {
	out := document{
		Events: make([]entities.Event, len(d.Events)),
		Users:  make([]userRecord, len(d.Users)),
	}
	for i := range d.Events {
		out.Events[i] = d.Events[i].Clone()
	}
	copy(out.Users, d.Users)
	return out
}

func hashPlaintextPasswords(users []userRecord) (int, error) {
	n := 0
	for i := range users {
		pw := users[i].Password
		if pw == "" || isBcryptHash(pw) {
			continue
		}
		// The legacy mock server accepted "$2a$10$" + password as a fake hash.
		pw = strings.TrimPrefix(pw, "$2a$10$")
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return n, fmt.Errorf("hash password for user %s: %w", users[i].ID, err)
		}
		users[i].Password = string(hash)
		n++
	}
	return n, nil
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
