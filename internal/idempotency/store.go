// Package idempotency guards against the same request being processed twice
// within a time window, keyed by a client-supplied token.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrConflict indicates the key was already claimed.
var ErrConflict = errors.New("idempotent request already processed")

const keyPrefix = "pos:idem:"

// Store claims keys in redis. A Store with a nil client accepts every key.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Claim records key for module. It returns ErrConflict if the key is still held.
func (s *Store) Claim(ctx context.Context, module, key string) error {
	if s == nil || s.client == nil || key == "" {
		return nil
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+module+":"+key, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// Release removes a claim, used when the guarded operation failed and may be retried.
func (s *Store) Release(ctx context.Context, module, key string) error {
	if s == nil || s.client == nil || key == "" {
		return nil
	}
	return s.client.Del(ctx, keyPrefix+module+":"+key).Err()
}
