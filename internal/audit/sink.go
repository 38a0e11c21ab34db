package audit

import (
	"context"
	"log/slog"
)

// Store persists attempt records.
type Store interface {
	Append(ctx context.Context, attempt Attempt) error
}

// Sink accepts attempt records without blocking the caller. Records flow
// through a bounded channel to a background worker; when the channel is
// full the record is dropped and counted, never waited on.
type Sink struct {
	inbox  chan Attempt
	logger *slog.Logger
}

const defaultBuffer = 256

// NewSink creates a sink with a bounded inbox. Pass the returned sink to
// the orchestrator and its Inbox to a Worker.
func NewSink(logger *slog.Logger) *Sink {
	return &Sink{
		inbox:  make(chan Attempt, defaultBuffer),
		logger: logger,
	}
}

// Record enqueues an attempt. Never blocks; a full inbox drops the record
// with a warning.
func (s *Sink) Record(attempt Attempt) {
	select {
	case s.inbox <- attempt:
	default:
		s.logger.Warn("audit inbox full, dropping attempt record",
			"provider", attempt.ProviderRef,
			"registration_number", attempt.RegistrationNumber,
		)
	}
}

// Inbox exposes the channel side consumed by the worker.
func (s *Sink) Inbox() <-chan Attempt {
	return s.inbox
}

// Worker consumes attempt records from the sink and persists them. Store
// failures are logged and swallowed; audit is advisory, not transactional.
type Worker struct {
	store     Store
	publisher Publisher // optional analytics fan-out
	inbox     <-chan Attempt
	logger    *slog.Logger
}

// Publisher fans attempt records out to an analytics stream. Implementations
// must treat delivery as best-effort.
type Publisher interface {
	Publish(ctx context.Context, attempt Attempt) error
}

// NewWorker wires a worker to a sink's inbox. publisher may be nil.
func NewWorker(store Store, publisher Publisher, inbox <-chan Attempt, logger *slog.Logger) *Worker {
	return &Worker{
		store:     store,
		publisher: publisher,
		inbox:     inbox,
		logger:    logger,
	}
}

// Run consumes until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case attempt := <-w.inbox:
			if err := w.store.Append(ctx, attempt); err != nil {
				w.logger.Warn("audit append failed",
					"provider", attempt.ProviderRef,
					"error", err,
				)
			}
			if w.publisher != nil {
				if err := w.publisher.Publish(ctx, attempt); err != nil {
					w.logger.Warn("audit publish failed",
						"provider", attempt.ProviderRef,
						"error", err,
					)
				}
			}
		}
	}
}
