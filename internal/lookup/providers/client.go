package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const maxResponseBytes = 1 << 20 // providers return small JSON documents

// Caller performs a single HTTP attempt against one provider descriptor.
// It owns transport-level classification only; body normalization is the
// normalizer's job.
type Caller struct {
	client HTTPDoer
	signer *Signer
	logger *slog.Logger
}

// CallerOption configures the Caller.
type CallerOption func(*Caller)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client HTTPDoer) CallerOption {
	return func(c *Caller) {
		c.client = client
	}
}

// NewCaller creates a provider caller. The signer may be shared across
// callers; it caches decoded keys internally.
func NewCaller(signer *Signer, logger *slog.Logger, opts ...CallerOption) *Caller {
	c := &Caller{
		client: &http.Client{},
		signer: signer,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one provider call and returns the raw response body on
// HTTP success. The context carries the per-attempt timeout; transport
// failures and timeouts are reported as status 502 so the chain can
// distinguish them from provider-asserted statuses.
func (c *Caller) Fetch(ctx context.Context, d Descriptor, registrationNumber, accountID string) ([]byte, error) {
	req, err := c.buildRequest(ctx, d, registrationNumber, accountID)
	if err != nil {
		return nil, NewProviderError(ErrorInternal, d.Ref, http.StatusBadGateway, "failed to build request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, NewProviderError(ErrorTimeout, d.Ref, http.StatusBadGateway, "request timed out", err)
		}
		return nil, NewProviderError(ErrorProviderOutage, d.Ref, http.StatusBadGateway, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewProviderError(ErrorBadData, d.Ref, http.StatusBadGateway, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewProviderError(ErrorNotFound, d.Ref, http.StatusNotFound, "record not found", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewProviderError(ErrorAuthentication, d.Ref, resp.StatusCode,
			fmt.Sprintf("authentication failed: %d", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, NewProviderError(ErrorProviderOutage, d.Ref, resp.StatusCode,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	return body, nil
}

func (c *Caller) buildRequest(ctx context.Context, d Descriptor, registrationNumber, accountID string) (*http.Request, error) {
	var req *http.Request
	var err error

	if d.Method == http.MethodGet {
		endpoint, parseErr := url.Parse(d.Base)
		if parseErr != nil {
			return nil, parseErr
		}
		q := endpoint.Query()
		q.Set(d.PayloadField, registrationNumber)
		for k, v := range d.ExtraParams {
			q.Set(k, fmt.Sprint(v))
		}
		endpoint.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	} else {
		payload := map[string]any{d.PayloadField: registrationNumber}
		for k, v := range d.ExtraParams {
			payload[k] = v
		}
		body, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, marshalErr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, d.Base, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, err
	}

	authValue := d.Key
	if d.AuthScheme != "" {
		authValue = d.AuthScheme + " " + d.Key
	}
	req.Header.Set(d.AuthHeader, authValue)

	for k, v := range d.ExtraHeaders {
		req.Header.Set(k, v)
	}

	if d.Signing != nil {
		sig, signErr := c.signer.Sign(*d.Signing, accountID, time.Now())
		if signErr != nil {
			// Degrade to an unsigned request rather than failing the attempt.
			c.logger.Warn("request signing failed, sending unsigned",
				"provider", d.Ref,
				"error", signErr,
			)
		} else {
			req.Header.Set(d.Signing.SignatureHeader, sig.Value)
			req.Header.Set(d.Signing.TimestampHeader, sig.Timestamp)
		}
	}

	return req, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
