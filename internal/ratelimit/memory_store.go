package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounter is an in-process fixed-window counter. It serves single-node
// deployments without Redis and deterministic tests; the clock is injectable
// for the latter.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryCounterOption configures a MemoryCounter.
type MemoryCounterOption func(*MemoryCounter)

// WithClock replaces the counter's clock (for tests).
func WithClock(now func() time.Time) MemoryCounterOption {
	return func(c *MemoryCounter) { c.now = now }
}

// NewMemoryCounter creates a MemoryCounter.
func NewMemoryCounter(opts ...MemoryCounterOption) *MemoryCounter {
	c := &MemoryCounter{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Incr implements port.CounterStore.
func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok || !now.Before(ent.windowEnd) {
		ent = &memoryEntry{windowEnd: now.Add(window)}
		c.entries[key] = ent
	}
	ent.count++
	return ent.count, ent.windowEnd.Sub(now), nil
}
