package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// UserStore binds chat handles to the full names the rota uses, backing the
// "iam" command. Same flat-file discipline as the shift cache.
type UserStore interface {
	Bind(handle, fullName string) error
	Lookup(handle string) (string, bool)
}

// FileUserStore persists handle bindings as a JSON object of
// handle -> full name.
type FileUserStore struct {
	path   string
	logger *zap.Logger
}

// NewFileUserStore creates a user store backed by the given path.
func NewFileUserStore(path string, logger *zap.Logger) *FileUserStore {
	return &FileUserStore{path: path, logger: logger}
}

func (s *FileUserStore) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read user bindings", zap.String("path", s.path), zap.Error(err))
		}
		return map[string]string{}
	}
	users := map[string]string{}
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn("user bindings file is corrupt, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return map[string]string{}
	}
	return users
}

// Bind records a handle -> full name binding, replacing any previous one.
func (s *FileUserStore) Bind(handle, fullName string) error {
	users := s.load()
	users[handle] = fullName

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user bindings: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write user bindings: %w", err)
	}
	return nil
}

// Lookup resolves a handle to its bound full name. The second return is
// false when no binding exists, in which case callers fall back to the raw
// handle.
func (s *FileUserStore) Lookup(handle string) (string, bool) {
	name, ok := s.load()[handle]
	return name, ok
}
