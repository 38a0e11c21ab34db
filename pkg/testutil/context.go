package testutil

import (
	"net/http"

	"rcgateway/pkg/requestcontext"
)

// WithAccount adds a resolved account ID to the request context, simulating
// what the auth middleware does for authenticated requests.
func WithAccount(req *http.Request, accountID string) *http.Request {
	return req.WithContext(requestcontext.WithAccountID(req.Context(), accountID))
}
