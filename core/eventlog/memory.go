package eventlog

import (
	"context"
	"sync"
)

// MemoryLog keeps every entry in memory and serves the bounded tail used by
// tick snapshots. The tail length is fixed at construction.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []LogEntry
	tailLen int
}

// NewMemoryLog creates a MemoryLog keeping tailLen entries in its Tail.
// A non-positive tailLen defaults to 50.
func NewMemoryLog(tailLen int) *MemoryLog {
	if tailLen <= 0 {
		tailLen = 50
	}
	return &MemoryLog{tailLen: tailLen}
}

// Append records the entry. It never fails.
func (l *MemoryLog) Append(_ context.Context, e LogEntry) error {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return nil
}

// Query returns entries matching q in emission order.
func (l *MemoryLog) Query(_ context.Context, q Query) ([]LogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var res []LogEntry
	for _, e := range l.entries {
		if q.matches(e) {
			res = append(res, e)
		}
	}
	return res, nil
}

// Tail returns a copy of the most recent entries, newest last.
func (l *MemoryLog) Tail() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := 0
	if len(l.entries) > l.tailLen {
		start = len(l.entries) - l.tailLen
	}
	tail := make([]LogEntry, len(l.entries)-start)
	copy(tail, l.entries[start:])
	return tail
}

// Len returns the total number of entries appended.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *MemoryLog) Close() error { return nil }
