// Package orchestrator walks the configured provider chain for one
// registration number: cache check, sequential provider attempts, the
// last-resort provider, then a terminal result or an aggregated failure.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rcgateway/internal/audit"
	"rcgateway/internal/lookup/metrics"
	"rcgateway/internal/lookup/models"
	"rcgateway/internal/lookup/normalize"
	"rcgateway/internal/lookup/providers"
	"rcgateway/internal/lookup/tracer"
	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/platform/sentinel"
	"rcgateway/pkg/requestcontext"
)

// Fetcher performs one HTTP attempt against a provider descriptor.
type Fetcher interface {
	Fetch(ctx context.Context, d providers.Descriptor, registrationNumber, accountID string) ([]byte, error)
}

// CacheReader exposes the read side of the result cache.
type CacheReader interface {
	// Find returns the most recent cache entry, or sentinel.ErrNotFound.
	Find(ctx context.Context, registrationNumber string) (*models.CacheEntry, error)

	// LatestExternalRef returns the most recent external provider reference
	// recorded for a registration number, or sentinel.ErrNotFound.
	LatestExternalRef(ctx context.Context, registrationNumber string) (string, error)
}

// AuditSink accepts best-effort attempt records. Must not block.
type AuditSink interface {
	Record(attempt audit.Attempt)
}

// MockTable is the static fallback used when no provider is configured.
type MockTable interface {
	Find(registrationNumber string) (*models.Record, bool)
}

// Config wires an Orchestrator.
type Config struct {
	Registry       *providers.Registry
	Fetcher        Fetcher
	Cache          CacheReader
	Audit          AuditSink
	Mock           MockTable
	Tracer         tracer.Tracer
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AttemptTimeout time.Duration
}

// Orchestrator runs the lookup state machine. It never writes to the cache
// or the ledger; those belong to the calling service.
type Orchestrator struct {
	registry       *providers.Registry
	fetcher        Fetcher
	cache          CacheReader
	audit          AuditSink
	mock           MockTable
	tracer         tracer.Tracer
	metrics        *metrics.Metrics
	logger         *slog.Logger
	attemptTimeout time.Duration
}

// New creates an orchestrator. Tracer defaults to a noop; the attempt
// timeout defaults to 15 seconds.
func New(cfg Config) *Orchestrator {
	if cfg.AttemptTimeout == 0 {
		cfg.AttemptTimeout = 15 * time.Second
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracer.NewNoop()
	}
	return &Orchestrator{
		registry:       cfg.Registry,
		fetcher:        cfg.Fetcher,
		cache:          cfg.Cache,
		audit:          cfg.Audit,
		mock:           cfg.Mock,
		tracer:         cfg.Tracer,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		attemptTimeout: cfg.AttemptTimeout,
	}
}

// Options controls one run.
type Options struct {
	// BypassCache skips the cache check, forcing fresh provider attempts.
	BypassCache bool

	// AccountID is forwarded to providers that require request signing.
	AccountID string

	// Progress receives live events. May be nil.
	Progress models.ProgressFunc
}

// attemptFailure is one collected provider failure, kept for aggregation.
type attemptFailure struct {
	ref      string
	status   int
	message  string
	notFound bool
}

func newAttemptFailure(pErr *providers.ProviderError) attemptFailure {
	return attemptFailure{
		ref:      pErr.Ref,
		status:   pErr.StatusCode,
		message:  pErr.Message,
		notFound: providers.IsNotFound(pErr),
	}
}

// Run executes one lookup. Terminal outcomes:
//   - cache hit: record + Provenance{Mode: cache}
//   - provider hit: record + Provenance{Mode: external, ProviderRef: ordinal or "last-resort"}
//   - mock hit: record + Provenance{Mode: mock}
//   - not found: domain error CodeNotFound
//   - chain exhausted: domain error CodeUpstreamUnavailable with a summary
//     of every individual failure
func (o *Orchestrator) Run(ctx context.Context, registrationNumber string, opts Options) (*models.Record, models.Provenance, error) {
	emit := opts.Progress
	if emit == nil {
		emit = func(models.ProgressEvent) {}
	}

	ctx, span := o.tracer.Start(ctx, "lookup.run",
		tracer.String("registration_number", registrationNumber),
		tracer.Bool("bypass_cache", opts.BypassCache),
	)

	rec, prov, err := o.run(ctx, registrationNumber, opts, emit)
	span.End(err)
	return rec, prov, err
}

func (o *Orchestrator) run(ctx context.Context, registrationNumber string, opts Options, emit models.ProgressFunc) (*models.Record, models.Provenance, error) {
	if !opts.BypassCache {
		if rec, prov, ok := o.checkCache(ctx, registrationNumber); ok {
			emit(models.ProgressEvent{Kind: models.ProgressCacheHit})
			return rec, prov, nil
		}
	}
	if o.metrics != nil {
		o.metrics.RecordCacheMiss()
	}

	if o.registry.Empty() {
		if o.mock != nil {
			if rec, ok := o.mock.Find(registrationNumber); ok {
				emit(models.ProgressEvent{Kind: models.ProgressMockHit})
				return rec, models.Provenance{Mode: models.ModeMock}, nil
			}
		}
		return nil, models.Provenance{}, dErrors.Wrap(providers.ErrNoProvidersConfigured,
			dErrors.CodeNotFound, "registration number not found")
	}

	var failures []attemptFailure
	maskedSeen := false

	for _, d := range o.registry.Chain() {
		rec, pErr := o.attempt(ctx, d, registrationNumber, opts.AccountID, emit)
		if rec != nil {
			return rec, models.Provenance{Mode: models.ModeExternal, ProviderRef: d.Ref}, nil
		}
		if providers.IsMasked(pErr) {
			maskedSeen = true
		}
		failures = append(failures, newAttemptFailure(pErr))
	}

	if lastResort, ok := o.registry.LastResort(); ok {
		rec, pErr := o.attempt(ctx, lastResort, registrationNumber, opts.AccountID, emit)
		if rec != nil {
			return rec, models.Provenance{Mode: models.ModeExternal, ProviderRef: lastResort.Ref}, nil
		}
		if providers.IsMasked(pErr) {
			maskedSeen = true
		}
		failures = append(failures, newAttemptFailure(pErr))
	}

	return nil, models.Provenance{}, o.exhausted(failures, maskedSeen)
}

// checkCache re-validates a cached record before replaying it. The masking
// check only applies when at least one provider is configured; with no
// providers a masked record is still the best record we have. A stale or
// masked entry is not deleted, only bypassed.
func (o *Orchestrator) checkCache(ctx context.Context, registrationNumber string) (*models.Record, models.Provenance, bool) {
	if o.cache == nil {
		return nil, models.Provenance{}, false
	}

	entry, err := o.cache.Find(ctx, registrationNumber)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			o.logger.Warn("cache read failed, falling through to providers",
				"registration_number", registrationNumber,
				"error", err,
			)
		}
		return nil, models.Provenance{}, false
	}

	rec := entry.Record
	if !normalize.IsComplete(&rec) {
		return nil, models.Provenance{}, false
	}
	if !o.registry.Empty() && normalize.IsMaskedName(rec.OwnerName) {
		return nil, models.Provenance{}, false
	}

	if o.metrics != nil {
		o.metrics.RecordCacheHit()
	}
	return &rec, models.Provenance{
		Mode:        models.ModeCache,
		ProviderRef: o.resolveExternalRef(ctx, entry),
	}, true
}

// resolveExternalRef reconciles the provenance shown to the caller: when the
// most recent cache row is itself a replay, the most recent external row for
// the same key still names the true originating provider. Read-time only;
// the entry's own provenance is never rewritten.
func (o *Orchestrator) resolveExternalRef(ctx context.Context, entry *models.CacheEntry) string {
	if entry.Mode == models.ModeExternal {
		return entry.ProviderRef
	}
	ref, err := o.cache.LatestExternalRef(ctx, entry.RegistrationNumber)
	if err != nil {
		return ""
	}
	return ref
}

// attempt performs one provider call end to end: fetch, normalize, gate.
// Returns the record on success, or the classified failure. Progress events
// carry the provider's configured ordinal, not its position in the surviving
// chain, so a gap in the env sequence never relabels downstream providers.
func (o *Orchestrator) attempt(ctx context.Context, d providers.Descriptor, registrationNumber, accountID string, emit models.ProgressFunc) (*models.Record, *providers.ProviderError) {
	emit(models.ProgressEvent{Kind: models.ProgressAttemptStarted, ProviderIndex: d.Position, ProviderRef: d.Ref})

	ctx, span := o.tracer.Start(ctx, "lookup.attempt",
		tracer.String("provider", d.Ref),
		tracer.Int("ordinal", d.Position),
	)
	start := time.Now()

	rec, pErr := o.callProvider(ctx, d, registrationNumber, accountID)

	elapsed := time.Since(start)
	if pErr != nil {
		span.End(pErr)
		o.recordFailure(ctx, d, registrationNumber, pErr, elapsed)
		emit(models.ProgressEvent{
			Kind:          models.ProgressAttemptFailed,
			ProviderIndex: d.Position,
			ProviderRef:   d.Ref,
			StatusCode:    pErr.StatusCode,
			Message:       pErr.Message,
		})
		return nil, pErr
	}

	span.End(nil)
	if o.metrics != nil {
		o.metrics.RecordAttempt(d.Ref, string(audit.OutcomeSuccess), elapsed)
	}
	o.recordAudit(ctx, audit.NewAttempt(registrationNumber, d.Ref, d.Variant(), audit.OutcomeSuccess, http.StatusOK, ""))
	emit(models.ProgressEvent{Kind: models.ProgressAttemptSucceeded, ProviderIndex: d.Position, ProviderRef: d.Ref})
	return rec, nil
}

// callProvider runs the fetch-normalize-gate pipeline for one descriptor
// under its own timeout. Cancelling one attempt never cancels the chain.
func (o *Orchestrator) callProvider(ctx context.Context, d providers.Descriptor, registrationNumber, accountID string) (*models.Record, *providers.ProviderError) {
	ctx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	body, err := o.fetcher.Fetch(ctx, d, registrationNumber, accountID)
	if err != nil {
		var pErr *providers.ProviderError
		if errors.As(err, &pErr) {
			return nil, pErr
		}
		return nil, providers.NewProviderError(providers.ErrorInternal, d.Ref, http.StatusBadGateway, "provider call failed", err)
	}

	rec, err := normalize.Normalize(body, registrationNumber)
	if err != nil {
		return nil, classifyNormalizeError(d.Ref, err)
	}

	if !normalize.IsComplete(rec) {
		return nil, providers.NewProviderError(providers.ErrorBadData, d.Ref, http.StatusBadGateway,
			"incomplete record: maker or fuel type missing", nil)
	}
	if normalize.IsMaskedName(rec.OwnerName) {
		if o.metrics != nil {
			o.metrics.RecordMasked(d.Ref)
		}
		return nil, providers.NewProviderError(providers.ErrorMasked, d.Ref, http.StatusOK,
			"owner name masked; trying next server", nil)
	}

	return rec, nil
}

func classifyNormalizeError(ref string, err error) *providers.ProviderError {
	var sem *normalize.SemanticError
	if errors.As(err, &sem) {
		if sem.NotFound {
			return providers.NewProviderError(providers.ErrorNotFound, ref, http.StatusNotFound, sem.Message, err)
		}
		return providers.NewProviderError(providers.ErrorBadData, ref, sem.Code, sem.Message, err)
	}

	var format *normalize.FormatError
	if errors.As(err, &format) {
		return providers.NewProviderError(providers.ErrorBadData, ref, http.StatusBadGateway,
			"unsupported response format; keys: "+strings.Join(format.Keys, ","), err)
	}

	return providers.NewProviderError(providers.ErrorBadData, ref, http.StatusBadGateway, "unparseable response", err)
}

func (o *Orchestrator) recordFailure(ctx context.Context, d providers.Descriptor, registrationNumber string, pErr *providers.ProviderError, elapsed time.Duration) {
	if o.metrics != nil {
		o.metrics.RecordAttempt(d.Ref, string(audit.OutcomeFailure), elapsed)
	}
	o.logger.Warn("provider attempt failed",
		"provider", d.Ref,
		"registration_number", registrationNumber,
		"category", string(pErr.Category),
		"status", pErr.StatusCode,
		"message", pErr.Message,
	)
	o.recordAudit(ctx, audit.NewAttempt(registrationNumber, d.Ref, d.Variant(), audit.OutcomeFailure, pErr.StatusCode, pErr.Message))
}

// recordAudit stamps request metadata onto an attempt before handing it to
// the sink.
func (o *Orchestrator) recordAudit(ctx context.Context, a audit.Attempt) {
	if o.audit == nil {
		return
	}
	a.ClientIP = requestcontext.ClientIP(ctx)
	o.audit.Record(a)
}

// exhausted decides the terminal failure. The chain reports NotFound only
// when every single failure was a not-found classification and no masked
// record was seen anywhere in the run; a masked record proves the vehicle
// exists, so the outcome must invite a retry instead.
func (o *Orchestrator) exhausted(failures []attemptFailure, maskedSeen bool) error {
	allNotFound := true
	for _, f := range failures {
		if !f.notFound {
			allNotFound = false
			break
		}
	}

	if allNotFound && !maskedSeen && len(failures) > 0 {
		return dErrors.New(dErrors.CodeNotFound, "registration number not found")
	}

	var summary strings.Builder
	for i, f := range failures {
		if i > 0 {
			summary.WriteString("; ")
		}
		fmt.Fprintf(&summary, "provider %s: %d %s", f.ref, f.status, f.message)
	}
	return dErrors.Wrap(providers.ErrAllProvidersFailed, dErrors.CodeUpstreamUnavailable,
		"all providers failed: "+summary.String())
}
