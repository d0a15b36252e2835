package analyzer

import "sort"

// Entry is a counted key.
type Entry[K comparable] struct {
	Key   K
	Count int
}

// Counter counts occurrences of keys and remembers the order in which keys
// were first seen. Ranking is by descending count with ties broken by
// first-seen order, which keeps reports deterministic.
type Counter[K comparable] struct {
	index   map[K]int
	entries []Entry[K]
}

// NewCounter creates an empty Counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{index: make(map[K]int)}
}

// Inc increments the count for key by one.
func (c *Counter[K]) Inc(key K) {
	if i, ok := c.index[key]; ok {
		c.entries[i].Count++
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry[K]{Key: key, Count: 1})
}

// Get returns the count for key, or zero if it was never seen.
func (c *Counter[K]) Get(key K) int {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.entries)
}

// Total returns the sum of all counts.
func (c *Counter[K]) Total() int {
	total := 0
	for _, e := range c.entries {
		total += e.Count
	}
	return total
}

// Entries returns all entries in first-seen order.
func (c *Counter[K]) Entries() []Entry[K] {
	out := make([]Entry[K], len(c.entries))
	copy(out, c.entries)
	return out
}

// Ranked returns all entries by descending count, ties in first-seen order.
func (c *Counter[K]) Ranked() []Entry[K] {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// MostCommon returns at most n entries in Ranked order.
// Returns nil for n <= 0.
func (c *Counter[K]) MostCommon(n int) []Entry[K] {
	if n <= 0 {
		return nil
	}
	ranked := c.Ranked()
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
