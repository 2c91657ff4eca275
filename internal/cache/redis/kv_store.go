package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// KVStore implements domain.KVStore on plain Redis string keys. Every key is
// namespaced under "kv:" so journal settings never collide with the other
// cache structures sharing the database.
type KVStore struct {
	rdb *redis.Client
}

// NewKVStore creates a KVStore backed by the given Client.
func NewKVStore(c *Client) *KVStore {
	return &KVStore{rdb: c.Underlying()}
}

func kvKey(key string) string {
	return "kv:" + key
}

// Get retrieves a value, returning domain.ErrNotFound for a missing key.
func (kv *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := kv.rdb.Get(ctx, kvKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: kv get %s: %w", key, err)
	}
	return val, nil
}

// Set stores a value. A zero ttl keeps the key forever.
func (kv *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := kv.rdb.Set(ctx, kvKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: kv set %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key. Removing a missing key is not an error.
func (kv *KVStore) Remove(ctx context.Context, key string) error {
	if err := kv.rdb.Del(ctx, kvKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: kv remove %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.KVStore = (*KVStore)(nil)
