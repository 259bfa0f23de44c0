package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed [Store]. Keys are namespaced as prefix:key.
//
// With a positive ttl, values expire; with sliding enabled every successful Get
// pushes the expiry forward by ttl.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	ttl     time.Duration
	sliding bool
}

// NewRedisStore creates a [RedisStore] backed by the given client.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration, sliding bool) *RedisStore {
	if prefix == "" {
		prefix = "gc"
	}
	return &RedisStore{
		redis:   client,
		prefix:  prefix,
		ttl:     ttl,
		sliding: sliding,
	}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

// Get returns the value under key. A missing key yields an error matching both
// [ErrNotFound] and redis.Nil.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	var (
		v   string
		err error
	)
	if s.sliding && s.ttl > 0 {
		v, err = s.redis.GetEx(ctx, s.key(key), s.ttl).Result()
	} else {
		v, err = s.redis.Get(ctx, s.key(key)).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, nil
}

// Set writes value, applying the configured TTL when one is set.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
