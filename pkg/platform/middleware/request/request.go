// Package request provides request correlation middleware. Every request
// gets an ID that flows through logs, audit rows, and the response header.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"rcgateway/pkg/requestcontext"
)

// HeaderName is the correlation header honored on the way in and set on the
// way out.
const HeaderName = "X-Request-ID"

// Middleware assigns a request ID, reusing the client's when it sends one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderName)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderName, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
