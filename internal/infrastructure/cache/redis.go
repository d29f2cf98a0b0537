package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// A stored value is one state byte followed by the response, if any.
const (
	statePending byte = 'p'
	stateDone    byte = 'd'
)

// RedisStore shares keys between instances. The client belongs to the
// caller and outlives the store.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.prefix+key, []byte{statePending}, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	value := append([]byte{stateDone}, response...)
	if err := s.rdb.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("complete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("lookup %s: %w", key, err)
	case len(value) == 0 || value[0] != stateDone:
		return nil, false, nil
	}
	return value[1:], true, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Close leaves the shared client open.
func (s *RedisStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*RedisStore)(nil)
