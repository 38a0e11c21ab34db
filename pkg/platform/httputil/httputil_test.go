package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rcgateway/pkg/domain-errors"
)

type echoRequest struct {
	Name string `json:"name"`
}

func (r *echoRequest) Normalize() {
	r.Name = strings.TrimSpace(strings.ToUpper(r.Name))
}

func (r *echoRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  hello "}`))

	req, ok := DecodeAndPrepare[echoRequest](w, r, slog.Default(), r.Context(), "req-1")
	require.True(t, ok)
	assert.Equal(t, "HELLO", req.Name)
}

func TestDecodeAndPrepareRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{"name":`, string(dErrors.CodeBadRequest)},
		{"fails validation", `{"name":"   "}`, string(dErrors.CodeValidation)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			req, ok := DecodeAndPrepare[echoRequest](w, r, slog.Default(), r.Context(), "req-1")
			assert.False(t, ok)
			assert.Nil(t, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantCode)
		})
	}
}

func TestWriteErrorDomainCodes(t *testing.T) {
	tests := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeValidation, http.StatusBadRequest},
		{dErrors.CodeUnauthorized, http.StatusUnauthorized},
		{dErrors.CodeTimeout, http.StatusGatewayTimeout},
		{dErrors.CodeUpstreamUnavailable, http.StatusServiceUnavailable},
		{dErrors.CodeInsufficientBalance, http.StatusPaymentRequired},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "boom"))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), string(tc.code))
			assert.Contains(t, w.Body.String(), "boom")
		})
	}
}

func TestWriteErrorUnknownErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("plain failure"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "plain failure", "internal details stay out of the response")
}
