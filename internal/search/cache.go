package search

import (
	"sync"
	"time"

	"bookwidget/internal/book"
)

type entry struct {
	books     []book.Book
	expiresAt time.Time
}

// resultCache is a TTL map of search results. Expired entries are dropped
// lazily on read and swept when the map grows past maxEntries.
type resultCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func newResultCache(ttl time.Duration, maxEntries int) *resultCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &resultCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *resultCache) get(key string) ([]book.Book, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return cloneAll(e.books), true
}

func (c *resultCache) set(key string, books []book.Book) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.sweepLocked()
	}
	c.entries[key] = entry{books: cloneAll(books), expiresAt: c.now().Add(c.ttl)}
}

// sweepLocked removes expired entries, and everything if none had expired.
func (c *resultCache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) >= c.maxEntries {
		clear(c.entries)
	}
}

func cloneAll(books []book.Book) []book.Book {
	out := make([]book.Book, len(books))
	for i, b := range books {
		out[i] = book.Clone(b)
	}
	return out
}
