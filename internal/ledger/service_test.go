package ledger

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/platform/sentinel"
)

var lookupPrice = decimal.NewFromInt(15)

type LedgerServiceSuite struct {
	suite.Suite

	store   *MemoryStore
	service *Service
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.service = NewService(s.store, NewMemoryTxRunner(s.store), nil, slog.Default())
}

func (s *LedgerServiceSuite) newAccount(balance int64) *Account {
	account, err := s.service.CreateAccount(context.Background(), "test account", decimal.NewFromInt(balance))
	s.Require().NoError(err)
	return account
}

func (s *LedgerServiceSuite) TestChargeDebitsExactlyOnce() {
	account := s.newAccount(100)
	ctx := context.Background()

	txn, err := s.service.ChargeForDelivery(ctx, account.ID, lookupPrice, "MH12AB1234")
	s.Require().NoError(err)
	s.Equal(TypeDebit, txn.Type)
	s.Equal(StatusCompleted, txn.Status)
	s.True(txn.Amount.Equal(lookupPrice))
	s.Equal("MH12AB1234", txn.Reference)

	after, err := s.service.Balance(ctx, account.ID)
	s.Require().NoError(err)
	s.True(after.Balance.Equal(decimal.NewFromInt(85)))

	txns, err := s.service.ListTransactions(ctx, account.ID, 10)
	s.Require().NoError(err)
	s.Require().Len(txns, 1)
}

func (s *LedgerServiceSuite) TestInsufficientBalanceLeavesLedgerUntouched() {
	account := s.newAccount(10)
	ctx := context.Background()

	_, err := s.service.ChargeForDelivery(ctx, account.ID, lookupPrice, "MH12AB1234")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	s.ErrorIs(err, sentinel.ErrInsufficientBalance)

	after, err := s.service.Balance(ctx, account.ID)
	s.Require().NoError(err)
	s.True(after.Balance.Equal(decimal.NewFromInt(10)))

	txns, err := s.service.ListTransactions(ctx, account.ID, 10)
	s.Require().NoError(err)
	s.Empty(txns)
}

func (s *LedgerServiceSuite) TestExactBalanceIsSufficient() {
	account := s.newAccount(15)

	_, err := s.service.ChargeForDelivery(context.Background(), account.ID, lookupPrice, "MH12AB1234")
	s.Require().NoError(err)

	after, err := s.service.Balance(context.Background(), account.ID)
	s.Require().NoError(err)
	s.True(after.Balance.IsZero())
}

func (s *LedgerServiceSuite) TestCreditTopsUp() {
	account := s.newAccount(5)

	txn, err := s.service.Credit(context.Background(), account.ID, decimal.NewFromInt(50), "topup-001")
	s.Require().NoError(err)
	s.Equal(TypeCredit, txn.Type)

	after, err := s.service.Balance(context.Background(), account.ID)
	s.Require().NoError(err)
	s.True(after.Balance.Equal(decimal.NewFromInt(55)))
}

func (s *LedgerServiceSuite) TestCreditRejectsNonPositiveAmount() {
	account := s.newAccount(5)

	_, err := s.service.Credit(context.Background(), account.ID, decimal.Zero, "topup-001")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *LedgerServiceSuite) TestChargeUnknownAccount() {
	_, err := s.service.ChargeForDelivery(context.Background(), uuid.New(), lookupPrice, "MH12AB1234")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestConcurrentChargesSerialize proves the no-overdraft property: with a
// balance covering exactly one lookup, two racing charges settle as one
// debit and one insufficient-balance refusal, never a negative balance.
func TestConcurrentChargesSerialize(t *testing.T) {
	store := NewMemoryStore()
	service := NewService(store, NewMemoryTxRunner(store), nil, slog.Default())

	account, err := service.CreateAccount(context.Background(), "racer", decimal.NewFromInt(15))
	require.NoError(t, err)

	const racers = 2
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.ChargeForDelivery(context.Background(), account.ID, lookupPrice, "MH12AB1234")
		}(i)
	}
	wg.Wait()

	var succeeded, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasCode(err, dErrors.CodeInsufficientBalance):
			refused++
		default:
			t.Fatalf("unexpected charge error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, refused)

	after, err := service.Balance(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, after.Balance.IsZero(), "balance must never go negative, got %s", after.Balance)
}
