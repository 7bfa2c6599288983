package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"listingsvc/application/ports"
)

// MemoryStore provides a simple in-memory CacheStore implementation for
// development and tests. Hit and miss counters are cumulative for the life
// of the store, mirroring the engine-wide counters of the production cache.
//
// TTL boundary: an entry is treated as absent at exactly its expiry
// instant, i.e. it is live only while now < expiresAt.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem

	hits   atomic.Int64
	misses atomic.Int64

	// now is replaceable in tests
	now func() time.Time
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}

	// Start cleanup goroutine
	go store.cleanupExpired()

	return store
}

// Get retrieves a value from the store
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	item, exists := s.items[key]
	s.mu.RUnlock()

	if !exists || !s.now().Before(item.expiresAt) {
		s.misses.Add(1)
		return nil, false, nil
	}

	s.hits.Add(1)
	value := make([]byte, len(item.value))
	copy(value, item.value)
	return value, true, nil
}

// Set stores a value with the given TTL
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = memoryItem{
		value:     stored,
		expiresAt: s.now().Add(ttl),
	}

	return nil
}

// Delete removes a key and reports whether a live entry was present
func (s *MemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[key]
	delete(s.items, key)

	return exists && s.now().Before(item.expiresAt), nil
}

// Stats returns cumulative counters and a rough memory estimate
func (s *MemoryStore) Stats(ctx context.Context) (ports.CacheStats, error) {
	s.mu.RLock()
	var used int64
	for key, item := range s.items {
		used += int64(len(key) + len(item.value))
	}
	s.mu.RUnlock()

	return ports.CacheStats{
		Hits:             s.hits.Load(),
		Misses:           s.misses.Load(),
		UsedMemory:       used,
		UsedMemoryHuman:  humanBytes(used),
		ConnectedClients: 1,
		TotalCommands:    s.hits.Load() + s.misses.Load(),
	}, nil
}

// cleanupExpired periodically removes expired items
func (s *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := s.now()
		for key, item := range s.items {
			if !now.Before(item.expiresAt) {
				delete(s.items, key)
			}
		}
		s.mu.Unlock()
	}
}
