package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no session record is persisted.
var ErrNotFound = errors.New("session record not found")

// Store persists the single serialized session record under a fixed key.
// Absence of the record means no active session. The session manager is
// the only writer.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, record []byte) error
	Clear(ctx context.Context) error
}
