package handler

import (
	"time"

	"rcgateway/internal/ledger"
)

type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Amount    string    `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

func toAccountResponse(a *ledger.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt,
	}
}

func toTransactionResponse(t ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID.String(),
		Type:      string(t.Type),
		Status:    string(t.Status),
		Amount:    t.Amount.String(),
		Reference: t.Reference,
		CreatedAt: t.CreatedAt,
	}
}

func toTransactionsResponse(txns []ledger.Transaction) *TransactionsResponse {
	out := &TransactionsResponse{Transactions: make([]TransactionResponse, 0, len(txns))}
	for _, t := range txns {
		out.Transactions = append(out.Transactions, toTransactionResponse(t))
	}
	return out
}
