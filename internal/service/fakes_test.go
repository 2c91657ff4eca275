package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// memTradeStore is an in-memory domain.TradeStore with the same six-field
// dedup behavior as the Postgres implementation.
type memTradeStore struct {
	mu     sync.Mutex
	trades map[string]domain.Trade // by ID
	keys   map[string]string      // dedup key -> ID
}

func newMemTradeStore() *memTradeStore {
	return &memTradeStore{
		trades: make(map[string]domain.Trade),
		keys:   make(map[string]string),
	}
}

func (m *memTradeStore) InsertBatch(_ context.Context, trades []domain.Trade) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, t := range trades {
		if _, dup := m.keys[t.Key()]; dup {
			continue
		}
		m.trades[t.ID] = t
		m.keys[t.Key()] = t.ID
		inserted++
	}
	return inserted, nil
}

func (m *memTradeStore) GetByID(_ context.Context, id string) (domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok {
		return domain.Trade{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *memTradeStore) Update(_ context.Context, t domain.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trades[t.ID]; !ok {
		return domain.ErrNotFound
	}
	m.trades[t.ID] = t
	return nil
}

func (m *memTradeStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.trades, id)
	delete(m.keys, t.Key())
	return nil
}

func (m *memTradeStore) sorted() []domain.Trade {
	out := make([]domain.Trade, 0, len(m.trades))
	for _, t := range m.trades {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (m *memTradeStore) List(_ context.Context, opts domain.ListOpts) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	// Descending, as the SQL store returns.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (m *memTradeStore) ListAll(_ context.Context) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m *memTradeStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.trades)), nil
}

func (m *memTradeStore) ListBefore(_ context.Context, before time.Time) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trade
	for _, t := range m.sorted() {
		if t.DateClosed.Before(before) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTradeStore) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.trades {
		if t.DateClosed.Before(before) {
			delete(m.trades, id)
			delete(m.keys, t.Key())
			n++
		}
	}
	return n, nil
}

func (m *memTradeStore) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.trades))
	m.trades = make(map[string]domain.Trade)
	m.keys = make(map[string]string)
	return n, nil
}

// memPendingCache is an in-memory domain.PendingImportCache. TTLs are
// ignored; tests control lifetime via Put/Remove.
type memPendingCache struct {
	mu      sync.Mutex
	batches map[string]domain.PendingImport
}

func newMemPendingCache() *memPendingCache {
	return &memPendingCache{batches: make(map[string]domain.PendingImport)}
}

func (m *memPendingCache) Put(_ context.Context, batch domain.PendingImport, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Copy the trades slice so caller and cache don't alias the same backing
	// array, matching the JSON serialization boundary of the Redis cache.
	batch.Outcome.Trades = append([]domain.Trade(nil), batch.Outcome.Trades...)
	m.batches[batch.ID] = batch
	return nil
}

func (m *memPendingCache) Get(_ context.Context, id string) (domain.PendingImport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return domain.PendingImport{}, domain.ErrNotFound
	}
	b.Outcome.Trades = append([]domain.Trade(nil), b.Outcome.Trades...)
	return b, nil
}

func (m *memPendingCache) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.batches, id)
	return nil
}

// memKV is an in-memory domain.KVStore.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// memLocks is an in-memory domain.LockManager.
type memLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocks() *memLocks {
	return &memLocks{held: make(map[string]bool)}
}

func (m *memLocks) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return nil, domain.ErrLockHeld
	}
	m.held[key] = true
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
	}, nil
}

// memAudit records audit events in memory.
type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (m *memAudit) Log(_ context.Context, event string, detail map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, domain.AuditEntry{
		ID:        int64(len(m.entries) + 1),
		Event:     event,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *memAudit) List(_ context.Context, _ domain.ListOpts) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memAudit) events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Event
	}
	return out
}
