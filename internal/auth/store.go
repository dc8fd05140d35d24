// Package auth provides the file-backed credential store.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fyrsmithlabs/ragd/internal/sanitize"
)

// Sentinel errors for credential operations.
var (
	// ErrUserExists is returned when adding a username that is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when deleting a username that is not registered.
	ErrUserNotFound = errors.New("user not found")
)

// Store persists username -> bcrypt hash mappings in a single JSON file.
//
// All mutating operations perform a full read-modify-write of the mapping.
// A store-wide mutex serializes these cycles, and writes go through a
// temp-file rename so readers never observe a half-written file.
type Store struct {
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// NewStore creates a credential store backed by the JSON file at path.
// The file is created empty on first access if absent.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	s := &Store{path: path, logger: logger}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.save(map[string]string{}); err != nil {
			return nil, fmt.Errorf("initializing store file: %w", err)
		}
		logger.Info("created empty credential store", zap.String("path", path))
	} else if err != nil {
		return nil, fmt.Errorf("checking store file: %w", err)
	}

	return s, nil
}

// Add registers a new user with a bcrypt hash of password.
// Returns ErrUserExists if the username is already present.
func (s *Store) Add(username, password string) error {
	if err := sanitize.ValidateUsername(username); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; ok {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	users[username] = string(hash)

	if err := s.save(users); err != nil {
		return err
	}

	s.logger.Info("added user", zap.String("username", username))
	return nil
}

// Delete removes a user from the store.
// Returns ErrUserNotFound if the username is not present.
func (s *Store) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	delete(users, username)

	if err := s.save(users); err != nil {
		return err
	}

	s.logger.Info("deleted user", zap.String("username", username))
	return nil
}

// Verify reports whether the password matches the stored hash for username.
// Unknown usernames and wrong passwords both return false, so callers cannot
// distinguish the two cases.
func (s *Store) Verify(username, password string) bool {
	s.mu.Lock()
	users, err := s.load()
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("loading credential store", zap.Error(err))
		return false
	}

	hash, ok := users[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// List returns all registered usernames, sorted.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	users, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// load reads the full mapping from disk. Callers hold s.mu.
func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	users := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &users); err != nil {
			return nil, fmt.Errorf("parsing store file %s: %w", s.path, err)
		}
	}
	return users, nil
}

// save atomically replaces the mapping on disk. Callers hold s.mu.
func (s *Store) save(users map[string]string) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}
