package cache

// entry is one element of the recency ring. It carries the key so the
// oldest entry can be removed from the map in O(1).
type entry[K comparable, V any] struct {
	key   K
	value V
	newer *entry[K, V]
	older *entry[K, V]
}

// ring orders entries by recency around a sentinel: sentinel.older is the
// most recently used entry and sentinel.newer the least recently used.
// It is not safe for concurrent use.
type ring[K comparable, V any] struct {
	sentinel entry[K, V]
}

func (r *ring[K, V]) init() {
	r.sentinel.newer = &r.sentinel
	r.sentinel.older = &r.sentinel
}

// touch makes e the most recently used entry, inserting it if needed.
func (r *ring[K, V]) touch(e *entry[K, V]) {
	if e.newer != nil {
		r.detach(e)
	}
	front := r.sentinel.older
	e.newer = &r.sentinel
	e.older = front
	front.newer = e
	r.sentinel.older = e
}

// oldest returns the least recently used entry, or nil.
func (r *ring[K, V]) oldest() *entry[K, V] {
	if e := r.sentinel.newer; e != &r.sentinel {
		return e
	}
	return nil
}

func (r *ring[K, V]) detach(e *entry[K, V]) {
	e.newer.older = e.older
	e.older.newer = e.newer
	e.newer, e.older = nil, nil
}
