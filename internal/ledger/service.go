package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/platform/sentinel"
	"rcgateway/pkg/requestcontext"
)

// TxRunner executes fn atomically. Database implementations begin a
// transaction, store it in the context for the stores to pick up, and
// commit or roll back based on fn's error.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns ledger semantics: the atomic debit, credits, and reads.
type Service struct {
	store   Store
	runner  TxRunner
	metrics *Metrics
	logger  *slog.Logger
}

// NewService creates a ledger service. Metrics may be nil.
func NewService(store Store, runner TxRunner, metrics *Metrics, logger *slog.Logger) *Service {
	return &Service{store: store, runner: runner, metrics: metrics, logger: logger}
}

// ChargeForDelivery debits price from the account, once, for one delivered
// record. The whole sequence — lock the row, re-read the balance, check
// sufficiency, decrement, append the transaction — runs in one database
// transaction, so two concurrent charges against the same account serialize
// and the second sees the first's decrement.
//
// Returns CodeInsufficientBalance without touching the balance when the
// locked read comes up short.
func (s *Service) ChargeForDelivery(ctx context.Context, accountID uuid.UUID, price decimal.Decimal, registrationNumber string) (*Transaction, error) {
	var txn Transaction

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		account, err := s.store.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "account not found")
			}
			return fmt.Errorf("lock account: %w", err)
		}

		if account.Balance.LessThan(price) {
			return dErrors.Wrap(sentinel.ErrInsufficientBalance, dErrors.CodeInsufficientBalance,
				fmt.Sprintf("balance %s is below lookup price %s", account.Balance, price))
		}

		if err := s.store.UpdateBalance(ctx, accountID, account.Balance.Sub(price)); err != nil {
			return fmt.Errorf("decrement balance: %w", err)
		}

		txn = NewTransaction(accountID, TypeDebit, price, registrationNumber)
		txn.CreatedAt = requestcontext.Now(ctx)
		if err := s.store.InsertTransaction(ctx, txn); err != nil {
			return fmt.Errorf("record debit: %w", err)
		}
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInsufficientBalance) && s.metrics != nil {
			s.metrics.RecordInsufficientBalance()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDebit(price)
	}
	s.logger.Info("lookup charged",
		"account_id", accountID,
		"amount", price.String(),
		"registration_number", registrationNumber,
	)
	return &txn, nil
}

// Credit tops up an account. Top-ups run under the same transaction
// discipline as debits so a concurrent charge never reads a half-applied
// balance.
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, reference string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credit amount must be positive")
	}

	var txn Transaction
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		account, err := s.store.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "account not found")
			}
			return fmt.Errorf("lock account: %w", err)
		}

		if err := s.store.UpdateBalance(ctx, accountID, account.Balance.Add(amount)); err != nil {
			return fmt.Errorf("increment balance: %w", err)
		}

		txn = NewTransaction(accountID, TypeCredit, amount, reference)
		txn.CreatedAt = requestcontext.Now(ctx)
		if err := s.store.InsertTransaction(ctx, txn); err != nil {
			return fmt.Errorf("record credit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordCredit(amount)
	}
	return &txn, nil
}

// CreateAccount opens an account with an initial balance.
func (s *Service) CreateAccount(ctx context.Context, name string, initialBalance decimal.Decimal) (*Account, error) {
	if initialBalance.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "initial balance cannot be negative")
	}
	account := &Account{
		ID:      uuid.New(),
		Name:    name,
		Balance: initialBalance,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// Balance returns the account's current balance.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// ListTransactions returns the newest transactions for an account.
func (s *Service) ListTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txns, err := s.store.ListTransactions(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}
