package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists attempt records in the lookup_attempts table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed attempt store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts one attempt row.
func (s *PostgresStore) Append(ctx context.Context, attempt Attempt) error {
	query := `
		INSERT INTO lookup_attempts (
			id, registration_number, provider_ref, variant,
			outcome, status_code, message, client_ip, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.RegistrationNumber,
		attempt.ProviderRef,
		attempt.Variant,
		string(attempt.Outcome),
		attempt.StatusCode,
		attempt.Message,
		attempt.ClientIP,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lookup attempt: %w", err)
	}
	return nil
}

// ListByRegistration returns the most recent attempts for a registration
// number, newest first. Used by admin analytics.
func (s *PostgresStore) ListByRegistration(ctx context.Context, registrationNumber string, limit int) ([]Attempt, error) {
	query := `
		SELECT id, registration_number, provider_ref, variant,
			   outcome, status_code, message, client_ip, created_at
		FROM lookup_attempts
		WHERE registration_number = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, registrationNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookup attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var outcome string
		if err := rows.Scan(
			&a.ID,
			&a.RegistrationNumber,
			&a.ProviderRef,
			&a.Variant,
			&outcome,
			&a.StatusCode,
			&a.Message,
			&a.ClientIP,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lookup attempt: %w", err)
		}
		a.Outcome = Outcome(outcome)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookup attempts: %w", err)
	}
	return attempts, nil
}
