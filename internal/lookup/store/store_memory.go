package store

import (
	"context"
	"sync"
	"time"

	"rcgateway/internal/lookup/models"
	"rcgateway/pkg/platform/sentinel"
)

// MemoryStore is an in-memory result cache for tests and local runs. It
// preserves the append-only set semantics of the PostgreSQL store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.CacheEntry
}

// NewMemoryStore creates an empty in-memory result cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, entry *models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemoryStore) Find(_ context.Context, registrationNumber string) (*models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].RegistrationNumber == registrationNumber {
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) LatestExternalRef(_ context.Context, registrationNumber string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.RegistrationNumber == registrationNumber && e.Mode == models.ModeExternal {
			return e.ProviderRef, nil
		}
	}
	return "", sentinel.ErrNotFound
}

// Len reports how many rows have been appended. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// All returns a copy of every row in append order. Test helper.
func (s *MemoryStore) All() []models.CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CacheEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
