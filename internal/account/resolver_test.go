package account

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/requestcontext"
)

func TestJWTResolverRoundTrip(t *testing.T) {
	resolver := NewJWTResolver("test-signing-key")
	accountID := uuid.New()

	token, err := resolver.IssueToken(accountID, time.Hour)
	require.NoError(t, err)

	got, err := resolver.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)
}

func TestJWTResolverRejectsExpiredToken(t *testing.T) {
	resolver := NewJWTResolver("test-signing-key")

	token, err := resolver.IssueToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = resolver.Resolve(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTResolverRejectsWrongKey(t *testing.T) {
	token, err := NewJWTResolver("key-one").IssueToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWTResolver("key-two").Resolve(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareStoresAccountID(t *testing.T) {
	resolver := NewJWTResolver("test-signing-key")
	accountID := uuid.New()
	token, err := resolver.IssueToken(accountID, time.Hour)
	require.NoError(t, err)

	var seen string
	handler := Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.AccountID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, accountID.String(), seen)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := Middleware(NewJWTResolver("test-signing-key"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
