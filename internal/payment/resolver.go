// Package payment verifies that a referenced payment actually settled
// before a top-up or delivery depends on it.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rcgateway/internal/ledger"
	"rcgateway/pkg/platform/sentinel"
)

// CompletionResolver answers whether a transaction reached the completed
// state.
type CompletionResolver interface {
	IsCompleted(ctx context.Context, transactionID uuid.UUID) (bool, error)
}

// LedgerResolver resolves completion from the ledger's transactions table.
type LedgerResolver struct {
	db *sql.DB
}

// NewLedgerResolver creates a transactions-table-backed resolver.
func NewLedgerResolver(db *sql.DB) *LedgerResolver {
	return &LedgerResolver{db: db}
}

// IsCompleted reports whether the transaction exists and settled. Unknown
// transactions return sentinel.ErrNotFound.
func (r *LedgerResolver) IsCompleted(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM transactions WHERE id = $1`,
		transactionID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, sentinel.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query transaction status: %w", err)
	}
	return ledger.TransactionStatus(status) == ledger.StatusCompleted, nil
}
