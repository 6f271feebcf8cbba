// Package cache supplies the two result tiers behind the fetch pipelines:
// a process-wide in-memory map with read-time TTL checks, and a per-identifier
// on-disk JSON snapshot used as a last-resort fallback.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	at      time.Time
	records []T
}

// Memory is an in-memory cache tier keyed by source identifier. Entries are
// never actively evicted; staleness is judged at read time so expired entries
// remain available as a fallback.
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewMemory creates an empty in-memory tier.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{
		entries: make(map[string]entry[T]),
		nowFunc: time.Now,
	}
}

// Get returns the cached records and their timestamp regardless of age.
func (m *Memory[T]) Get(key string) ([]T, time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.records, e.at, true
}

// Set stores records under key with the current timestamp. Concurrent
// writers race benignly; the last writer wins.
func (m *Memory[T]) Set(key string, records []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[T]{at: m.nowFunc(), records: records}
}

// IsExpired reports whether the entry under key is missing or older than ttl.
func (m *Memory[T]) IsExpired(key string, ttl time.Duration) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return true
	}
	return m.nowFunc().Sub(e.at) >= ttl
}

// GetFresh returns the cached records only when the entry is younger than
// ttl and holds at least one record.
func (m *Memory[T]) GetFresh(key string, ttl time.Duration) ([]T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || len(e.records) == 0 {
		return nil, false
	}
	if m.nowFunc().Sub(e.at) >= ttl {
		return nil, false
	}
	return e.records, true
}
