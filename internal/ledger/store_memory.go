package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rcgateway/pkg/platform/sentinel"
)

// MemoryStore is an in-memory ledger store for tests. One mutex covers all
// accounts, so a paired MemoryTxRunner gets the same mutual exclusion the
// database row lock provides.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	txns     []Transaction
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[uuid.UUID]*Account)}
}

func (s *MemoryStore) CreateAccount(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.CreatedAt.IsZero() {
		now := time.Now().UTC()
		account.CreatedAt = now
		account.UpdatedAt = now
	}
	a := *account
	s.accounts[a.ID] = &a
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id uuid.UUID) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

// GetAccountForUpdate behaves like GetAccount; exclusivity comes from the
// MemoryTxRunner holding the store lock for the whole transaction.
func (s *MemoryStore) GetAccountForUpdate(_ context.Context, id uuid.UUID) (*Account, error) {
	return s.get(id)
}

func (s *MemoryStore) get(id uuid.UUID) (*Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *MemoryStore) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	a, ok := s.accounts[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	a.Balance = balance
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) InsertTransaction(_ context.Context, txn Transaction) error {
	s.txns = append(s.txns, txn)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, accountID uuid.UUID, limit int) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Transaction
	for i := len(s.txns) - 1; i >= 0 && len(out) < limit; i-- {
		if s.txns[i].AccountID == accountID {
			out = append(out, s.txns[i])
		}
	}
	return out, nil
}

// MemoryTxRunner serializes in-memory "transactions" with the store mutex.
type MemoryTxRunner struct {
	store *MemoryStore
}

// NewMemoryTxRunner pairs a runner with its store.
func NewMemoryTxRunner(store *MemoryStore) *MemoryTxRunner {
	return &MemoryTxRunner{store: store}
}

func (r *MemoryTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(ctx)
}
