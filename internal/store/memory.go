package store

import (
	"container/list"
	"context"
	"strconv"
	"sync"
	"time"
)

// memoryEntry is a single stored value with its expiry and LRU position
type memoryEntry struct {
	key       string
	value     string
	expiresAt time.Time
	element   *list.Element
}

func (e *memoryEntry) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process Store with per-key TTLs and LRU eviction.
// It stands in for Redis when no address is configured.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	lruList    *list.List
	maxEntries int

	now func() time.Time
}

// NewMemoryStore creates an in-process store bounded to maxEntries keys.
// When full, the least recently used key is evicted.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		lruList:    list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key and whether it exists
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists {
		return "", false, nil
	}
	if entry.isExpired(m.now()) {
		m.removeEntry(entry)
		return "", false, nil
	}

	m.lruList.MoveToFront(entry.element)
	return entry.value, true, nil
}

// Set writes value under key with the given TTL
func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setLocked(key, value, ttl)
	return nil
}

// Increment adds one to the counter at key, creating it with the TTL when
// absent or expired. The expiry is never extended by later increments.
func (m *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, exists := m.entries[key]
	if !exists || entry.isExpired(now) {
		if exists {
			m.removeEntry(entry)
		}
		m.setLocked(key, "1", ttl)
		return 1, nil
	}

	n, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		n = 0
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	m.lruList.MoveToFront(entry.element)
	return n, nil
}

// Ping always succeeds for the in-process store
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close releases all entries
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*memoryEntry)
	m.lruList.Init()
	return nil
}

// Len returns the number of stored keys, including not yet reaped
// expired ones
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartCleanupWorker reaps expired keys every interval until ctx is done
func (m *MemoryStore) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanupExpired()
		}
	}
}

func (m *MemoryStore) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, entry := range m.entries {
		if entry.isExpired(now) {
			m.removeEntry(entry)
		}
	}
}

func (m *MemoryStore) setLocked(key, value string, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if entry, exists := m.entries[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		m.lruList.MoveToFront(entry.element)
		return
	}

	if len(m.entries) >= m.maxEntries {
		m.evictLRU()
	}

	entry := &memoryEntry{key: key, value: value, expiresAt: expiresAt}
	entry.element = m.lruList.PushFront(key)
	m.entries[key] = entry
}

func (m *MemoryStore) evictLRU() {
	back := m.lruList.Back()
	if back == nil {
		return
	}
	if entry, exists := m.entries[back.Value.(string)]; exists {
		m.removeEntry(entry)
	}
}

func (m *MemoryStore) removeEntry(entry *memoryEntry) {
	m.lruList.Remove(entry.element)
	delete(m.entries, entry.key)
}
