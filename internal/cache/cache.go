// Package cache provides a thread-safe generic cache and the rendered post cache.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	// gens counts Deletes per key and epoch counts Clears. GetOrLoad
	// compares them across load to drop values that were invalidated.
	gens  map[K]uint64
	epoch uint64
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
		gens:  make(map[K]uint64),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	c.gens[key]++
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
	c.gens = make(map[K]uint64)
	c.epoch++
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Errors are not cached. A value whose key was deleted (or the cache
// cleared) while load ran is returned but not stored.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.RLock()
	if v, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	gen, epoch := c.gens[key], c.epoch
	c.mu.RUnlock()

	v, err := load()
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] == gen && c.epoch == epoch {
		c.items[key] = v
	}
	return v, nil
}

// Rendered post bodies, keyed by content hash.
var renderedCache = NewCache[string, []byte]()

func GetRendered(contentHash string) ([]byte, bool) {
	return renderedCache.Get(contentHash)
}

func SetRendered(contentHash string, html []byte) {
	renderedCache.Set(contentHash, html)
}

func ClearRendered() {
	renderedCache.Clear()
}
