package handler

import (
	"strings"

	"github.com/google/uuid"

	dErrors "rcgateway/pkg/domain-errors"
)

// LookupRequest is the body of POST /lookup.
type LookupRequest struct {
	RegistrationNumber string `json:"registration_number"`
	BypassCache        bool   `json:"bypass_cache,omitempty"`
}

func (r *LookupRequest) Normalize() {
	r.RegistrationNumber = strings.TrimSpace(r.RegistrationNumber)
}

func (r *LookupRequest) Validate() error {
	if r.RegistrationNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "registration_number is required")
	}
	return nil
}

// RedeemRequest is the body of POST /lookup/redeem: a guest presenting the
// settled transaction that paid for a record.
type RedeemRequest struct {
	RegistrationNumber string `json:"registration_number"`
	TransactionID      string `json:"transaction_id"`

	transactionID uuid.UUID
}

func (r *RedeemRequest) Normalize() {
	r.RegistrationNumber = strings.TrimSpace(r.RegistrationNumber)
	r.TransactionID = strings.TrimSpace(r.TransactionID)
}

func (r *RedeemRequest) Validate() error {
	if r.RegistrationNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "registration_number is required")
	}
	id, err := uuid.Parse(r.TransactionID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "transaction_id must be a UUID")
	}
	r.transactionID = id
	return nil
}
