// Package cache provides the time-bounded key/value stores used by the engine.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with the time it was recorded
type Entry[V any] struct {
	Value      V         `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Fresh reports whether the entry is younger than ttl at now
func (e Entry[V]) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.RecordedAt) < ttl
}

// TTLCache is a thread-safe map of timestamped entries.
//
// Expiry is checked on read against a per-call TTL, so one store can serve
// different freshness requirements; Sweep bounds growth by removing anything
// older than a hard maximum age. Writes to the same key are last-write-wins
// and replace the whole entry under the lock.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]Entry[V]
	now     func() time.Time
}

// New creates an empty cache using the wall clock
func New[K comparable, V any]() *TTLCache[K, V] {
	return NewWithClock[K, V](time.Now)
}

// NewWithClock creates an empty cache reading time from now
func NewWithClock[K comparable, V any](now func() time.Time) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		entries: make(map[K]Entry[V]),
		now:     now,
	}
}

// Get returns the value for key if it was recorded less than ttl ago
func (c *TTLCache[K, V]) Get(key K, ttl time.Duration) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !entry.Fresh(c.now(), ttl) {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// Set stores value under key, stamped with the current time
func (c *TTLCache[K, V]) Set(key K, value V) {
	entry := Entry[V]{Value: value, RecordedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Delete removes key
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeleteFunc removes every entry whose key satisfies match and returns how many were removed
func (c *TTLCache[K, V]) DeleteFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Sweep evicts entries recorded maxAge or more ago and returns how many were evicted
func (c *TTLCache[K, V]) Sweep(maxAge time.Duration) int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if !entry.Fresh(now, maxAge) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of stored entries, fresh or not
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]Entry[V])
	c.mu.Unlock()
}

// Snapshot copies all entries for persistence
func (c *TTLCache[K, V]) Snapshot() map[K]Entry[V] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[K]Entry[V], len(c.entries))
	for key, entry := range c.entries {
		snapshot[key] = entry
	}
	return snapshot
}

// Restore loads persisted entries, keeping their original timestamps
func (c *TTLCache[K, V]) Restore(entries map[K]Entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range entries {
		c.entries[key] = entry
	}
}
