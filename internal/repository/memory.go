package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryCache is the in-process fallback for RedisCache.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	rateLimits map[string]*rateLimitEntry
	now        func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		rateLimits: make(map[string]*rateLimitEntry),
		now:        time.Now,
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		m.rateLimits[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}
