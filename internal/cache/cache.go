package cache

import "sync"

// LRU is a generic thread-safe least-recently-used set of entries with a
// hard capacity. When an insertion exceeds the capacity the least recently
// used entry is removed and handed to the eviction callback.
//
// LRU must not be copied after creation (has mutex).
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	order    ring[K, V]
	capacity int
	onEvict  func(K, V)
}

// New creates an LRU holding at most capacity entries. A capacity of 0 or
// less means unlimited. onEvict may be nil.
//
// onEvict runs after the internal lock is released, so it may call back
// into the LRU.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *LRU[K, V] {
	c := &LRU[K, V]{
		entries:  make(map[K]*entry[K, V]),
		capacity: capacity,
		onEvict:  onEvict,
	}
	c.order.init()
	return c
}

// Set stores value under key, marks it most recently used and evicts the
// least recently used entries beyond capacity.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[K, V]{key: key}
		c.entries[key] = e
	}
	e.value = value
	c.order.touch(e)

	var evicted []*entry[K, V]
	for c.capacity > 0 && len(c.entries) > c.capacity {
		old := c.order.oldest()
		if old == nil {
			break
		}
		c.order.detach(old)
		delete(c.entries, old.key)
		evicted = append(evicted, old)
	}
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, old := range evicted {
			c.onEvict(old.key, old.value)
		}
	}
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
