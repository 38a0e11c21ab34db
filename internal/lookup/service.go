// Package lookup exposes the record lookup use cases: run the provider
// chain, persist every delivered record, and charge the account exactly
// once per delivery.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rcgateway/internal/ledger"
	"rcgateway/internal/lookup/metrics"
	"rcgateway/internal/lookup/models"
	"rcgateway/internal/lookup/orchestrator"
	"rcgateway/internal/lookup/store"
	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/platform/sentinel"
	"rcgateway/pkg/requestcontext"
)

var registrationNumberPattern = regexp.MustCompile(`^[A-Z0-9]{5,12}$`)

// Charger debits one lookup price from an account.
type Charger interface {
	ChargeForDelivery(ctx context.Context, accountID uuid.UUID, price decimal.Decimal, registrationNumber string) (*ledger.Transaction, error)
}

// RedemptionVerifier confirms a referenced payment settled before a guest
// redemption is served.
type RedemptionVerifier interface {
	IsCompleted(ctx context.Context, transactionID uuid.UUID) (bool, error)
}

// Service is the lookup use case layer over the orchestrator.
type Service struct {
	orchestrator *orchestrator.Orchestrator
	cache        store.Store
	charger      Charger
	payments     RedemptionVerifier
	price        decimal.Decimal
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewService wires the lookup service. Metrics may be nil; charger may be
// nil when billing is handled elsewhere, in which case Lookup is free;
// payments may be nil, which disables guest redemption.
func NewService(o *orchestrator.Orchestrator, cache store.Store, charger Charger, payments RedemptionVerifier, price decimal.Decimal, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		orchestrator: o,
		cache:        cache,
		charger:      charger,
		payments:     payments,
		price:        price,
		metrics:      m,
		logger:       logger,
	}
}

// Options controls one lookup.
type Options struct {
	BypassCache bool
	Progress    models.ProgressFunc
}

// Lookup resolves one registration number without billing. Every delivered
// record appends a cache row tagged with its provenance; persistence
// failures never fail a lookup that already has its record in hand.
func (s *Service) Lookup(ctx context.Context, registrationNumber string, accountID uuid.UUID, opts Options) (*models.LookupResult, error) {
	regNo, err := CleanRegistrationNumber(registrationNumber)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec, prov, err := s.orchestrator.Run(ctx, regNo, orchestrator.Options{
		BypassCache: opts.BypassCache,
		AccountID:   accountID.String(),
		Progress:    opts.Progress,
	})
	s.observe(prov, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	entry := &models.CacheEntry{
		RegistrationNumber: regNo,
		Record:             *rec,
		Mode:               prov.Mode,
		ProviderRef:        prov.ProviderRef,
		CreatedAt:          requestcontext.Now(ctx).UTC(),
	}
	if saveErr := s.cache.Save(ctx, entry); saveErr != nil {
		s.logger.Error("cache write failed, record delivered anyway",
			"registration_number", regNo,
			"error", saveErr,
		)
	}

	return &models.LookupResult{Record: *rec, Provenance: prov}, nil
}

// LookupAndCharge resolves a registration number and debits the account on
// delivery. A cache hit costs the same as a fresh provider call; the only
// free outcomes are the ones with no record: not-found, chain exhaustion,
// and a balance refused before delivery.
func (s *Service) LookupAndCharge(ctx context.Context, registrationNumber string, accountID uuid.UUID, opts Options) (*models.LookupResult, *ledger.Transaction, error) {
	result, err := s.Lookup(ctx, registrationNumber, accountID, opts)
	if err != nil {
		return nil, nil, err
	}

	if s.charger == nil {
		return result, nil, nil
	}

	txn, err := s.charger.ChargeForDelivery(ctx, accountID, s.price, result.Record.RegistrationNumber)
	if err != nil {
		// The record stays cached, but an uncharged record is never
		// delivered.
		return nil, nil, err
	}
	return result, txn, nil
}

// Redeem serves an already-paid-for record without an account session: the
// caller presents the settled transaction that paid for the lookup and the
// record is replayed from the result cache. No provider is dialed and no
// charge is made; the replay still appends a cache row like any other
// delivery.
func (s *Service) Redeem(ctx context.Context, registrationNumber string, transactionID uuid.UUID) (*models.LookupResult, error) {
	if s.payments == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "redemption not available")
	}

	regNo, err := CleanRegistrationNumber(registrationNumber)
	if err != nil {
		return nil, err
	}

	completed, err := s.payments.IsCompleted(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown transaction")
		}
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !completed {
		return nil, dErrors.New(dErrors.CodePaymentRequired, "payment has not completed")
	}

	entry, err := s.cache.Find(ctx, regNo)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no record on file for this registration number")
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}

	prov := models.Provenance{Mode: models.ModeCache, ProviderRef: s.latestExternalRef(ctx, entry)}
	replay := &models.CacheEntry{
		RegistrationNumber: regNo,
		Record:             entry.Record,
		Mode:               models.ModeCache,
		ProviderRef:        prov.ProviderRef,
		CreatedAt:          requestcontext.Now(ctx).UTC(),
	}
	if saveErr := s.cache.Save(ctx, replay); saveErr != nil {
		s.logger.Error("cache write failed, record delivered anyway",
			"registration_number", regNo,
			"error", saveErr,
		)
	}

	return &models.LookupResult{Record: entry.Record, Provenance: prov}, nil
}

func (s *Service) latestExternalRef(ctx context.Context, entry *models.CacheEntry) string {
	if entry.Mode == models.ModeExternal {
		return entry.ProviderRef
	}
	ref, err := s.cache.LatestExternalRef(ctx, entry.RegistrationNumber)
	if err != nil {
		return ""
	}
	return ref
}

// Price returns the per-lookup price.
func (s *Service) Price() decimal.Decimal {
	return s.price
}

func (s *Service) observe(prov models.Provenance, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := "delivered"
	switch {
	case err == nil:
		outcome = string(prov.Mode)
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		outcome = "not_found"
	case dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	s.metrics.ObserveLookup(outcome, elapsed)
}

// CleanRegistrationNumber uppercases the input and strips separators, then
// validates the result against the plate shape providers accept.
func CleanRegistrationNumber(raw string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	if !registrationNumberPattern.MatchString(cleaned) {
		return "", dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("invalid registration number %q", raw))
	}
	return cleaned, nil
}
