package httpapi

import "sync"

// riskCache is a thread-safe LRU cache of computed risk responses, keyed on
// the exact (variable, threshold, month, day, location) tuple. Statistics are
// deterministic for a frozen index, so entries never expire; they are only
// evicted by capacity.
type riskCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value riskResponse
	prev  *entry
	next  *entry
}

func newRiskCache(maxEntries int) *riskCache {
	return &riskCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *riskCache) get(key string) (riskResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return riskResponse{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *riskCache) put(key string, value riskResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *riskCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *riskCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *riskCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *riskCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *riskCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
