package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/socialai-labs/socialai-gateway/pkg/store"
)

// Store keeps the session record in a single JSON file, the durable
// equivalent of a browser's local storage entry.
type Store struct {
	path string
}

// New builds a file-backed session store at the given path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("session file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

func (s *Store) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if len(data) == 0 {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// Save writes the record atomically: a rename either fully replaces the
// previous record or leaves it untouched.
func (s *Store) Save(_ context.Context, record []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, record, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
