// Package account resolves API credentials to ledger accounts.
package account

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "rcgateway/pkg/domain-errors"
)

// Resolver maps a bearer token to the account it belongs to.
type Resolver interface {
	Resolve(token string) (uuid.UUID, error)
}

// Claims are the access token claims issued to API consumers. AccountID is
// the ledger account debited for every delivered lookup.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// JWTResolver validates HMAC-signed access tokens.
type JWTResolver struct {
	signingKey []byte
}

// NewJWTResolver creates a resolver over a shared HMAC signing key.
func NewJWTResolver(signingKey string) *JWTResolver {
	return &JWTResolver{signingKey: []byte(signingKey)}
}

// Resolve validates the token and returns its account ID.
func (r *JWTResolver) Resolve(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return r.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no account")
	}
	return accountID, nil
}

// IssueToken mints a token for an account. Used by provisioning tooling and
// tests; the service itself only validates.
func (r *JWTResolver) IssueToken(accountID uuid.UUID, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(r.signingKey)
}
