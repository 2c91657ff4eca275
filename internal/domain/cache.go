package domain

import (
	"context"
	"time"
)

// KVStore is the injected key-value capability used for user settings and
// other small persisted values. Implementations must return ErrNotFound for
// missing keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// PendingImportCache holds parsed import batches between upload and the
// user's confirm/discard decision. Entries expire on their own so an
// abandoned review never leaks.
type PendingImportCache interface {
	Put(ctx context.Context, batch PendingImport, ttl time.Duration) error
	Get(ctx context.Context, id string) (PendingImport, error)
	Remove(ctx context.Context, id string) error
}

// LockManager provides distributed mutual exclusion. Confirming an import
// batch takes a lock on the batch so a double-submitted confirm cannot merge
// the same trades twice.
type LockManager interface {
	// Acquire obtains the lock or returns ErrLockHeld. The returned release
	// function is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RateLimiter limits how often an action may run per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// StreamMessage is a single entry read back from a durable event stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub fan-out of journal events (imports, merges,
// trade edits) plus a durable stream for consumers that poll.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}
