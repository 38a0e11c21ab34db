// Package handler is the HTTP layer for lookups. It delegates to the
// lookup service and keeps transport concerns out of the domain packages.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rcgateway/internal/audit"
	"rcgateway/internal/ledger"
	"rcgateway/internal/lookup"
	"rcgateway/internal/lookup/models"
	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/platform/httputil"
	"rcgateway/pkg/requestcontext"
)

// Service defines the lookup operations the HTTP layer needs.
type Service interface {
	LookupAndCharge(ctx context.Context, registrationNumber string, accountID uuid.UUID, opts lookup.Options) (*models.LookupResult, *ledger.Transaction, error)
	Redeem(ctx context.Context, registrationNumber string, transactionID uuid.UUID) (*models.LookupResult, error)
}

// AuditReader lists recorded provider attempts for analytics.
type AuditReader interface {
	ListByRegistration(ctx context.Context, registrationNumber string, limit int) ([]audit.Attempt, error)
}

type Handler struct {
	service Service
	audits  AuditReader
	logger  *slog.Logger
}

// New creates the lookup handler. audits may be nil when the audit store is
// not readable from this process.
func New(service Service, audits AuditReader, logger *slog.Logger) *Handler {
	return &Handler{service: service, audits: audits, logger: logger}
}

// Register mounts the lookup routes. The router passed in is expected to
// already carry account authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/lookup", h.HandleLookup)
	r.Get("/lookup/stream", h.HandleLookupStream)
}

// RegisterAdmin mounts analytics routes, kept off the authenticated consumer
// surface.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/attempts/{registrationNumber}", h.HandleListAttempts)
}

// RegisterGuest mounts the unauthenticated redemption route.
func (h *Handler) RegisterGuest(r chi.Router) {
	r.Post("/lookup/redeem", h.HandleRedeem)
}

// HandleLookup resolves one registration number and charges the account on
// delivery.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, ok := h.accountID(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[LookupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, txn, err := h.service.LookupAndCharge(ctx, req.RegistrationNumber, accountID, lookup.Options{
		BypassCache: req.BypassCache,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup failed",
			"error", err,
			"request_id", requestID,
			"registration_number", req.RegistrationNumber,
		)
		httputil.WriteError(w, err)
		return
	}

	charged := ""
	if txn != nil {
		charged = txn.Amount.String()
	}
	httputil.WriteJSON(w, http.StatusOK, toLookupResponse(result, charged))
}

// HandleRedeem serves a paid-for record to a caller without an account
// session. The record comes from the result cache and is never charged
// again; verification of the presented transaction is the service's job.
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RedeemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Redeem(ctx, req.RegistrationNumber, req.transactionID)
	if err != nil {
		h.logger.WarnContext(ctx, "redemption refused",
			"error", err,
			"request_id", requestID,
			"registration_number", req.RegistrationNumber,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLookupResponse(result, ""))
}

// HandleListAttempts returns the newest audit rows for a registration
// number.
func (h *Handler) HandleListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.audits == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "attempt history not available"))
		return
	}

	regNo, err := lookup.CleanRegistrationNumber(chi.URLParam(r, "registrationNumber"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	attempts, err := h.audits.ListByRegistration(ctx, regNo, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list attempts failed", "error", err, "registration_number", regNo)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

func (h *Handler) accountID(w http.ResponseWriter, ctx context.Context) (uuid.UUID, bool) {
	raw := requestcontext.AccountID(ctx)
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no account in request context"))
		return uuid.Nil, false
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "malformed account id"))
		return uuid.Nil, false
	}
	return accountID, true
}
