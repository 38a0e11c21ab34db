// Package ledger implements the prepaid balance ledger: per-account
// balances plus an append-only transaction history, with an atomic debit
// path charged exactly once per delivered lookup.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes balance movements.
type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// TransactionStatus is the settlement state of one transaction. Rows are
// written already settled; StatusCompleted is what payment verification
// checks for.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
)

// Account is one prepaid balance holder.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction is one ledger row. Amount is always positive; Type carries
// the direction. Reference ties a debit to the registration number it paid
// for.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	AccountID uuid.UUID         `json:"account_id"`
	Type      TransactionType   `json:"type"`
	Status    TransactionStatus `json:"status"`
	Amount    decimal.Decimal   `json:"amount"`
	Reference string            `json:"reference,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewTransaction builds a settled transaction row.
func NewTransaction(accountID uuid.UUID, txType TransactionType, amount decimal.Decimal, reference string) Transaction {
	return Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      txType,
		Status:    StatusCompleted,
		Amount:    amount,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}
}
