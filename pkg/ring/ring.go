// Package ring provides a bounded, append-only buffer.
package ring

import "sync"

// Buffer keeps at most Capacity items. When an append pushes the size past
// Capacity the buffer is cut back to its newest Retain items, so
// Retain == Capacity gives a plain sliding window and a smaller Retain gives
// keep-last-N truncation.
//
// Buffer is safe for concurrent use.
type Buffer[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	retain   int
}

// New creates a sliding window of the given capacity.
func New[T any](capacity int) *Buffer[T] {
	return NewTruncating[T](capacity, capacity)
}

// NewTruncating creates a buffer that drops down to retain items once it
// grows past capacity. retain is clamped to [1, capacity].
func NewTruncating[T any](capacity, retain int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	if retain < 1 || retain > capacity {
		retain = capacity
	}
	return &Buffer[T]{
		items:    make([]T, 0, capacity+1),
		capacity: capacity,
		retain:   retain,
	}
}

// Push appends v and enforces the capacity policy.
func (b *Buffer[T]) Push(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, v)
	if len(b.items) <= b.capacity {
		return
	}

	// Copy into a fresh backing array so dropped items can be collected.
	kept := make([]T, b.retain, b.capacity+1)
	copy(kept, b.items[len(b.items)-b.retain:])
	b.items = kept
}

// Last returns up to n of the newest items, oldest first. n <= 0 returns
// every item.
func (b *Buffer[T]) Last(n int) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > len(b.items) {
		n = len(b.items)
	}
	out := make([]T, n)
	copy(out, b.items[len(b.items)-n:])
	return out
}

// All returns a copy of every item, oldest first.
func (b *Buffer[T]) All() []T {
	return b.Last(0)
}

// Len returns the number of stored items.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Cap returns the configured capacity.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// Clear drops every item.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = make([]T, 0, b.capacity+1)
}
