package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps attempt records in memory for tests and local runs.
type MemoryStore struct {
	mu       sync.Mutex
	attempts []Attempt
}

// NewMemoryStore creates an empty in-memory attempt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores an attempt record.
func (s *MemoryStore) Append(_ context.Context, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

// All returns a copy of every stored attempt in insertion order.
func (s *MemoryStore) All() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}
