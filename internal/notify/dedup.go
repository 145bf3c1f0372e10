package notify

import "sync"

// Cache is a fixed-capacity seen-set with FIFO eviction. It replaces an
// unbounded sent-notification registry; old keys age out instead of
// accumulating for the life of the process.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	seen     map[string]struct{}
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

// Add records key and reports whether it was new. Inserting into a full
// cache evicts the oldest key first.
func (c *Cache) Add(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		return false
	}
	if len(c.order) == c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}
	c.order = append(c.order, key)
	c.seen[key] = struct{}{}
	return true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
