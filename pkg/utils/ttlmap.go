package utils

import (
	"sync"
	"time"
)

// TTLMap provides a thread-safe map with expiring entries.
// Entries are refreshed on every successful Get.
type TTLMap[K comparable, V any] struct {
	mu      sync.RWMutex
	data    map[K]V
	expires map[K]time.Time
	ttl     time.Duration
	onEvict func(K, V)
	done    chan struct{}
	once    sync.Once
}

// NewTTLMap creates a new TTLMap with the specified TTL duration.
func NewTTLMap[K comparable, V any](ttl time.Duration) *TTLMap[K, V] {
	m := &TTLMap[K, V]{
		data:    make(map[K]V),
		expires: make(map[K]time.Time),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	go m.cleanup()

	return m
}

// OnEvict registers a callback invoked for entries removed by expiry.
func (m *TTLMap[K, V]) OnEvict(fn func(K, V)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onEvict = fn
}

// Get retrieves a value from the map and extends its lifetime.
// Returns the value and whether it exists/is valid.
func (m *TTLMap[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, exists := m.data[key]
	if !exists || time.Now().After(m.expires[key]) {
		var zero V
		return zero, false
	}

	m.expires[key] = time.Now().Add(m.ttl)

	return value, true
}

// Set adds or updates a value in the map.
func (m *TTLMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	m.expires[key] = time.Now().Add(m.ttl)
}

// Delete removes a key from the map.
func (m *TTLMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.expires, key)
}

// Len returns the number of stored entries, including ones awaiting cleanup.
func (m *TTLMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// Close stops the cleanup goroutine.
func (m *TTLMap[K, V]) Close() {
	m.once.Do(func() { close(m.done) })
}

// cleanup periodically removes expired entries.
func (m *TTLMap[K, V]) cleanup() {
	ticker := time.NewTicker(m.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *TTLMap[K, V]) evictExpired() {
	type evicted struct {
		key   K
		value V
	}

	m.mu.Lock()
	now := time.Now()
	var removed []evicted
	for key, expires := range m.expires {
		if now.After(expires) {
			removed = append(removed, evicted{key: key, value: m.data[key]})
			delete(m.data, key)
			delete(m.expires, key)
		}
	}
	onEvict := m.onEvict
	m.mu.Unlock()

	if onEvict == nil {
		return
	}
	for _, e := range removed {
		onEvict(e.key, e.value)
	}
}
