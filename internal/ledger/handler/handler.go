// Package handler exposes the wallet endpoints: balance, history, top-ups,
// and account provisioning.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rcgateway/internal/ledger"
	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/platform/httputil"
	"rcgateway/pkg/requestcontext"
)

// Service defines the ledger operations the HTTP layer needs.
type Service interface {
	CreateAccount(ctx context.Context, name string, initialBalance decimal.Decimal) (*ledger.Account, error)
	Balance(ctx context.Context, accountID uuid.UUID) (*ledger.Account, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, reference string) (*ledger.Transaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.Transaction, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated wallet routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/wallet/balance", h.HandleBalance)
	r.Get("/wallet/transactions", h.HandleListTransactions)
	r.Post("/wallet/topup", h.HandleTopUp)
}

// RegisterAdmin mounts account provisioning.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/accounts", h.HandleCreateAccount)
}

func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.accountID(w, ctx)
	if !ok {
		return
	}

	account, err := h.service.Balance(ctx, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "balance query failed", "error", err, "account_id", accountID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.accountID(w, ctx)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	txns, err := h.service.ListTransactions(ctx, accountID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list transactions failed", "error", err, "account_id", accountID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransactionsResponse(txns))
}

func (h *Handler) HandleTopUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	accountID, ok := h.accountID(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[TopUpRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	txn, err := h.service.Credit(ctx, accountID, req.amount, req.Reference)
	if err != nil {
		h.logger.ErrorContext(ctx, "top-up failed", "error", err, "account_id", accountID, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toTransactionResponse(*txn))
}

func (h *Handler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	account, err := h.service.CreateAccount(ctx, req.Name, req.balance)
	if err != nil {
		h.logger.ErrorContext(ctx, "create account failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
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
