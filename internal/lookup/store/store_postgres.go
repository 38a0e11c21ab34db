package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rcgateway/internal/lookup/models"
	"rcgateway/pkg/platform/sentinel"
)

// PostgresStore keeps cache entries in the rc_cache_entries table. The
// normalized record is stored as JSONB so new optional fields never need a
// schema migration.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed result cache.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save appends one entry. Existing rows for the same registration number are
// left untouched.
func (s *PostgresStore) Save(ctx context.Context, entry *models.CacheEntry) error {
	record, err := json.Marshal(entry.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO rc_cache_entries (
			id, registration_number, record, provenance_mode, provider_ref, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		entry.RegistrationNumber,
		record,
		string(entry.Mode),
		entry.ProviderRef,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}
	return nil
}

// Find returns the most recent entry for a registration number.
func (s *PostgresStore) Find(ctx context.Context, registrationNumber string) (*models.CacheEntry, error) {
	query := `
		SELECT registration_number, record, provenance_mode, provider_ref, created_at
		FROM rc_cache_entries
		WHERE registration_number = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		entry  models.CacheEntry
		record []byte
		mode   string
	)
	err := s.db.QueryRowContext(ctx, query, registrationNumber).Scan(
		&entry.RegistrationNumber,
		&record,
		&mode,
		&entry.ProviderRef,
		&entry.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry: %w", err)
	}

	if err := json.Unmarshal(record, &entry.Record); err != nil {
		return nil, fmt.Errorf("unmarshal cached record: %w", err)
	}
	entry.Mode = models.ProvenanceMode(mode)
	return &entry, nil
}

// LatestExternalRef returns the provider reference of the newest external
// row for a registration number.
func (s *PostgresStore) LatestExternalRef(ctx context.Context, registrationNumber string) (string, error) {
	query := `
		SELECT provider_ref
		FROM rc_cache_entries
		WHERE registration_number = $1 AND provenance_mode = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var ref string
	err := s.db.QueryRowContext(ctx, query, registrationNumber, string(models.ModeExternal)).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query external ref: %w", err)
	}
	return ref, nil
}
