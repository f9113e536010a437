// Package cache provides a small LRU used to keep decoded posting bitmaps
// across lookups within one read snapshot.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a fixed-capacity least-recently-used cache keyed by string.
type LRU[V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[string]*list.Element
	evictList *list.List
}

type entry[V any] struct {
	key   string
	value V
}

// NewLRU creates an LRU holding at most capacity entries.
func NewLRU[V any](capacity int) *LRU[V] {
	return &LRU[V]{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns a cached value.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Set caches a value, evicting the least recently used entry when full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry[V]).value = value
		return
	}

	ent := c.evictList.PushFront(&entry[V]{key: key, value: value})
	c.items[key] = ent

	for c.evictList.Len() > c.capacity {
		last := c.evictList.Back()
		if last == nil {
			break
		}
		c.evictList.Remove(last)
		delete(c.items, last.Value.(*entry[V]).key)
	}
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}
