// Package memory implements a bounded in-process cache.
//
// Eviction runs in two phases on every write: expired entries are dropped
// first, and if the cache is still at capacity the oldest entries by
// insertion time are removed until the new entry fits.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/talentlink/talentlink/internal/cache"
)

type entry struct {
	value      []byte
	insertedAt time.Time
	expiresAt  time.Time
}

// Mem is a bounded TTL cache. Safe for concurrent use.
type Mem struct {
	mu         sync.Mutex
	data       map[string]entry
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a memory cache with the given default TTL and entry cap.
func New(defaultTTL time.Duration, maxEntries int) *Mem {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &Mem{
		data:       make(map[string]entry),
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

var _ cache.Cache = (*Mem)(nil)

func (m *Mem) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.data, key)
		return nil, false
	}
	return e.value, true
}

func (m *Mem) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists && len(m.data) >= m.maxEntries {
		m.evictLocked()
	}

	now := m.now()
	m.data[key] = entry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	}
}

func (m *Mem) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Len returns the current entry count, including not-yet-purged expired
// entries.
func (m *Mem) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// evictLocked drops expired entries; if the cache is still full it removes
// the oldest entries until one slot is free. Caller holds the lock.
func (m *Mem) evictLocked() {
	now := m.now()
	for k, e := range m.data {
		if now.After(e.expiresAt) {
			delete(m.data, k)
		}
	}
	if len(m.data) < m.maxEntries {
		return
	}

	type aged struct {
		key string
		at  time.Time
	}
	all := make([]aged, 0, len(m.data))
	for k, e := range m.data {
		all = append(all, aged{k, e.insertedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	drop := len(m.data) - m.maxEntries + 1
	for i := 0; i < drop && i < len(all); i++ {
		delete(m.data, all[i].key)
	}
}
