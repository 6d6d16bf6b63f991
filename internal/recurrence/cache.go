package recurrence

import (
	"sync"
	"time"
)

type cacheKey struct {
	text   string
	anchor int64
	loc    string
}

type cacheEntry struct {
	rule *Rule
	err  error
}

// Cache memoises Parse results, including failures, keyed by rule text and anchor.
// When full, the oldest entry is evicted first.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[cacheKey]cacheEntry
	order   []cacheKey
}

func NewCache(max int) *Cache {
	if max < 1 {
		max = 1
	}
	return &Cache{max: max, entries: make(map[cacheKey]cacheEntry)}
}

func (c *Cache) Parse(text string, anchor time.Time) (*Rule, error) {
	key := cacheKey{text: text, anchor: anchor.UnixNano(), loc: anchor.Location().String()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.rule, e.err
	}

	rule, err := Parse(text, anchor)
	if len(c.order) >= c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = cacheEntry{rule: rule, err: err}
	c.order = append(c.order, key)
	return rule, err
}
