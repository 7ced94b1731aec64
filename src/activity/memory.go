package activity

import (
	"context"

	"minebot/pkg/ring"
	"minebot/src/model"
)

const (
	// MemoryCapacity is the size at which the memory buffer is truncated
	MemoryCapacity = 100
	// MemoryRetain is how many of the newest records survive a truncation
	MemoryRetain = 50
)

// Sink receives a copy of every record added to the memory buffer.
type Sink interface {
	Push(ctx context.Context, record model.MemoryRecord) error
}

// Memory holds the records of recent cycles.
type Memory struct {
	records *ring.Buffer[model.MemoryRecord]
	sink    Sink
}

// NewMemory creates a memory buffer. sink may be nil.
func NewMemory(sink Sink) *Memory {
	return &Memory{
		records: ring.NewTruncating[model.MemoryRecord](MemoryCapacity, MemoryRetain),
		sink:    sink,
	}
}

// Add stores the record locally, then mirrors it to the sink. The local
// copy is kept even when the sink fails.
func (m *Memory) Add(ctx context.Context, record model.MemoryRecord) error {
	m.records.Push(record)
	if m.sink == nil {
		return nil
	}
	return m.sink.Push(ctx, record)
}

// Recent returns up to n newest records, oldest first. n <= 0 returns all.
func (m *Memory) Recent(n int) []model.MemoryRecord {
	return m.records.Last(n)
}

// Len returns the number of records held locally
func (m *Memory) Len() int {
	return m.records.Len()
}
