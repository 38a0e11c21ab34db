package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the persistence contract for accounts and transactions.
// Methods that participate in an atomic debit run against the transaction
// carried in the context when one is present.
type Store interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetAccountForUpdate reads the account row under a row lock so a
	// concurrent debit of the same account blocks until this transaction
	// settles. Only meaningful inside a database transaction.
	GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	InsertTransaction(ctx context.Context, txn Transaction) error
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]Transaction, error)
}
