package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the credential blob under a single Redis key.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore returns a RedisStore using client and key.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Get implements BlobStore.Get.
func (s *RedisStore) Get(ctx context.Context) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", ErrBlobNotFound, s.key)
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return b, nil
}

// Put implements BlobStore.Put. The key never expires; the refresh token inside outlives any access token.
func (s *RedisStore) Put(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
