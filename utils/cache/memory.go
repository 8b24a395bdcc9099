package cache

import (
	"sync"
	"time"
)

// MemoryCache is a small best-effort in-process response cache.
// Entries are time-boxed and the total size is capped; when full, the
// oldest entry is evicted. A background sweep removes expired entries
// periodically. Nothing relies on it for correctness, only latency.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	maxSize int
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	value     []byte
	storedAt  time.Time
	expiresAt time.Time
}

const (
	// DefaultMemoryCacheSize caps the number of cached responses
	DefaultMemoryCacheSize = 256
	// DefaultMemoryCacheTTL bounds how stale a cached response may be
	DefaultMemoryCacheTTL = 60 * time.Second

	sweepInterval = 5 * time.Minute
)

// NewMemoryCache creates a memory cache and starts its sweep loop
func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultMemoryCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultMemoryCacheTTL
	}

	m := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: maxSize,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}

	go m.sweepLoop()

	return m
}

// Get returns the cached value for key, or ok=false when absent or
// expired. Expired entries are removed on access.
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key. When the cache is full the oldest
// entry is evicted to make room.
func (m *MemoryCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.evictOldestLocked()
	}

	m.entries[key] = &memoryEntry{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(m.ttl),
	}
}

// Delete removes keys matching the given exact keys
func (m *MemoryCache) Delete(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
}

// Flush empties the cache
func (m *MemoryCache) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memoryEntry)
}

// Len returns the current number of entries
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stop terminates the sweep loop
func (m *MemoryCache) Stop() {
	m.once.Do(func() {
		close(m.stop)
	})
}

func (m *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range m.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

func (m *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.SweepExpired()
		case <-m.stop:
			return
		}
	}
}

// SweepExpired removes all expired entries and returns how many were
// dropped
func (m *MemoryCache) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}
