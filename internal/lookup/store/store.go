// Package store persists normalized RC records in the append-only result
// cache. Rows are never updated or deleted; the newest row for a
// registration number is the answer, and the full history doubles as the
// dataset of every record ever delivered.
package store

import (
	"context"

	"rcgateway/internal/lookup/models"
)

// Store is the result cache contract. Find and LatestExternalRef return
// sentinel.ErrNotFound when no matching row exists.
type Store interface {
	// Save appends one cache entry. It never overwrites.
	Save(ctx context.Context, entry *models.CacheEntry) error

	// Find returns the most recent entry for a registration number.
	Find(ctx context.Context, registrationNumber string) (*models.CacheEntry, error)

	// LatestExternalRef returns the provider reference of the most recent
	// entry whose provenance is external. Used to reconcile replay
	// provenance without rewriting rows.
	LatestExternalRef(ctx context.Context, registrationNumber string) (string, error)
}
