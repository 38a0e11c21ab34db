// Package audit records provider lookup attempts for later analytics.
// Writes are best-effort: a failed or dropped audit record must never
// change the outcome of the lookup that produced it.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies one provider attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

const maxMessageLen = 250

// Attempt is one immutable provider-attempt record.
type Attempt struct {
	ID                 uuid.UUID
	RegistrationNumber string
	ProviderRef        string // "1".."4", "last-resort", or "mock"
	Variant            string // classified from the provider's base URL host
	Outcome            Outcome
	StatusCode         int
	Message            string
	ClientIP           string // originating caller, from request metadata
	CreatedAt          time.Time
}

// NewAttempt builds an attempt row with a fresh ID and truncated message.
func NewAttempt(registrationNumber, providerRef, variant string, outcome Outcome, statusCode int, message string) Attempt {
	if len(message) > maxMessageLen {
		message = message[:maxMessageLen]
	}
	return Attempt{
		ID:                 uuid.New(),
		RegistrationNumber: registrationNumber,
		ProviderRef:        providerRef,
		Variant:            variant,
		Outcome:            outcome,
		StatusCode:         statusCode,
		Message:            message,
		CreatedAt:          time.Now(),
	}
}
