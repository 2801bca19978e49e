package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/socialai-labs/socialai-gateway/pkg/store"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey() string
}

type client interface {
	sessionStore
	sessionKeyer
}

// Store keeps the session record under the client's fixed session key.
// No TTL is applied: the session lives until logout clears it.
type Store struct {
	store sessionStore
	keyer sessionKeyer
}

// New builds a Redis-backed session store.
func New(c client) (*Store, error) {
	if c == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Store{store: c, keyer: c}, nil
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	value, err := s.store.Get(ctx, s.keyer.SessionKey())
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("loading session record: %w", err)
	}
	if value == "" {
		return nil, store.ErrNotFound
	}
	return []byte(value), nil
}

func (s *Store) Save(ctx context.Context, record []byte) error {
	if err := s.store.Set(ctx, s.keyer.SessionKey(), string(record), 0); err != nil {
		return fmt.Errorf("saving session record: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.store.Del(ctx, s.keyer.SessionKey()); err != nil {
		return fmt.Errorf("clearing session record: %w", err)
	}
	return nil
}
