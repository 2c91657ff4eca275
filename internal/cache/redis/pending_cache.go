package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// PendingImportCache implements domain.PendingImportCache. Each parsed batch
// is stored as JSON at "import:pending:{id}" with a TTL, so an import the
// user never confirms or discards expires on its own.
type PendingImportCache struct {
	rdb *redis.Client
}

// NewPendingImportCache creates a PendingImportCache backed by the given
// Client.
func NewPendingImportCache(c *Client) *PendingImportCache {
	return &PendingImportCache{rdb: c.Underlying()}
}

func pendingKey(id string) string {
	return "import:pending:" + id
}

// Put stores a pending batch for the review window.
func (pc *PendingImportCache) Put(ctx context.Context, batch domain.PendingImport, ttl time.Duration) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("redis: marshal pending import %s: %w", batch.ID, err)
	}
	if err := pc.rdb.Set(ctx, pendingKey(batch.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: put pending import %s: %w", batch.ID, err)
	}
	return nil
}

// Get retrieves a pending batch, returning domain.ErrNotFound when the batch
// never existed or has already expired.
func (pc *PendingImportCache) Get(ctx context.Context, id string) (domain.PendingImport, error) {
	data, err := pc.rdb.Get(ctx, pendingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PendingImport{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PendingImport{}, fmt.Errorf("redis: get pending import %s: %w", id, err)
	}

	var batch domain.PendingImport
	if err := json.Unmarshal(data, &batch); err != nil {
		return domain.PendingImport{}, fmt.Errorf("redis: unmarshal pending import %s: %w", id, err)
	}
	return batch, nil
}

// Remove drops a pending batch after confirm or discard.
func (pc *PendingImportCache) Remove(ctx context.Context, id string) error {
	if err := pc.rdb.Del(ctx, pendingKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: remove pending import %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.PendingImportCache = (*PendingImportCache)(nil)
