package cache

import "sync"

// Cache computes a value once per key and hands the same value to every caller.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
}

type entry[T any] struct {
	done  chan struct{}
	value T
}

func New[T any]() *Cache[T] {
	return &Cache[T]{entries: map[string]*entry[T]{}}
}

// Do returns the value for key, calling compute only if no caller has done so yet.
// shared is false for the caller whose compute ran.
func (c *Cache[T]) Do(key string, compute func() T) (value T, shared bool) {
	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-existing.done

		return existing.value, true
	}

	created := &entry[T]{done: make(chan struct{})}
	c.entries[key] = created
	c.mu.Unlock()

	defer close(created.done)
	created.value = compute()

	return created.value, false
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
