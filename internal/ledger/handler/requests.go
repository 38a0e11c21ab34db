package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	dErrors "rcgateway/pkg/domain-errors"
)

// TopUpRequest is the body of POST /wallet/topup. Amount arrives as a
// string so no client-side float ever shapes a balance.
type TopUpRequest struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`

	amount decimal.Decimal
}

func (r *TopUpRequest) Normalize() {
	r.Amount = strings.TrimSpace(r.Amount)
	r.Reference = strings.TrimSpace(r.Reference)
}

func (r *TopUpRequest) Validate() error {
	if r.Amount == "" {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "amount is not a valid number")
	}
	if !amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	r.amount = amount
	return nil
}

// CreateAccountRequest is the body of POST /admin/accounts.
type CreateAccountRequest struct {
	Name           string `json:"name"`
	InitialBalance string `json:"initial_balance,omitempty"`

	balance decimal.Decimal
}

func (r *CreateAccountRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.InitialBalance = strings.TrimSpace(r.InitialBalance)
}

func (r *CreateAccountRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.InitialBalance == "" {
		r.balance = decimal.Zero
		return nil
	}
	balance, err := decimal.NewFromString(r.InitialBalance)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "initial_balance is not a valid number")
	}
	if balance.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "initial_balance cannot be negative")
	}
	r.balance = balance
	return nil
}
