package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/astroview/astro-edge/pkg/cache"
)

// MemStore is an in-memory cache.Store for handler tests that should not
// depend on Redis. Behavior mirrors RedisStore: opaque blobs, TTL expiry,
// last writer wins.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]memEntry)}
}

// Get returns the stored value or cache.ErrCacheMiss.
func (s *MemStore) Get(_ context.Context, key cache.Key) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key.String()]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, cache.ErrCacheMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Put stores value under key for ttl.
func (s *MemStore) Put(_ context.Context, key cache.Key, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.entries[key.String()] = memEntry{value: stored, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Len returns the number of live entries.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
