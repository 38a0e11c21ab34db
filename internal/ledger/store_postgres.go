package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rcgateway/pkg/platform/sentinel"
	"rcgateway/pkg/platform/tx"
)

// PostgresStore persists accounts and transactions. Balance columns are
// NUMERIC; amounts round-trip through strings so no float ever touches
// money.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed ledger store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// execer returns the context transaction when one is active, else the pool.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, name, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
		account.UpdatedAt = now
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Balance.String(),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `
		SELECT id, name, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return s.scanAccount(s.execer(ctx).QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `
		SELECT id, name, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	return s.scanAccount(s.execer(ctx).QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) scanAccount(row *sql.Row) (*Account, error) {
	var (
		account Account
		balance string
	)
	err := row.Scan(&account.ID, &account.Name, &balance, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}

	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	return &account, nil
}

func (s *PostgresStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $2, updated_at = $3
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, id, balance.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balance rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertTransaction(ctx context.Context, txn Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, type, status, amount, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		txn.ID,
		txn.AccountID,
		string(txn.Type),
		string(txn.Status),
		txn.Amount.String(),
		txn.Reference,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]Transaction, error) {
	query := `
		SELECT id, account_id, type, status, amount, reference, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var (
			txn    Transaction
			txType string
			status string
			amount string
		)
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txType, &status, &amount, &txn.Reference, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.Type = TransactionType(txType)
		txn.Status = TransactionStatus(status)
		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
