package providers

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for provider attempts.
type ErrorCategory string

const (
	// ErrorTimeout indicates the provider took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the provider returned a body that could not
	// be normalized into an RC record
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the provider is unavailable
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorNotFound indicates the provider classified the registration
	// number as genuinely nonexistent
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorMasked indicates a structurally valid record with a redacted
	// owner name; a soft failure that triggers fallback
	ErrorMasked ErrorCategory = "masked"

	// ErrorInternal indicates an unexpected internal error
	ErrorInternal ErrorCategory = "internal"
)

// ProviderError wraps a single provider failure with normalized
// categorization and the HTTP status reported to callers.
type ProviderError struct {
	Category   ErrorCategory
	Ref        string // provider reference: "1".."4" or "last-resort"
	StatusCode int
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.Ref, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.Ref, e.Category, e.Message)
}

// Unwrap supports error unwrapping.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError creates a new normalized provider error.
func NewProviderError(category ErrorCategory, ref string, statusCode int, message string, underlying error) *ProviderError {
	return &ProviderError{
		Category:   category,
		Ref:        ref,
		StatusCode: statusCode,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the error category from an error.
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

// IsNotFound reports whether the attempt classified the registration
// number as nonexistent rather than the provider being broken.
func IsNotFound(err error) bool {
	return GetCategory(err) == ErrorNotFound
}

// IsMasked reports whether the attempt failed only the owner-name
// masking check.
func IsMasked(err error) bool {
	return GetCategory(err) == ErrorMasked
}

// Sentinel errors for common cases.
var (
	ErrNoProvidersConfigured = errors.New("no providers configured")
	ErrAllProvidersFailed    = errors.New("all providers failed")
)
