// Package usecase implements the fire-and-forget audit emitter.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/vitaldiary/entryvault/internal/audit/domain"
	"github.com/vitaldiary/entryvault/internal/audit/repository"
)

// Emitter records structured, content-free security events.
//
// Recording is fire-and-forget: a broken audit trail must never block a
// user from reading or writing their own data, so every internal failure
// is swallowed here and at most logged.
type Emitter interface {
	// Record emits one audit event. errorKind is empty for successes.
	Record(ctx context.Context, action auditDomain.Action, outcome auditDomain.Outcome, errorKind string)
}

// emitterUseCase implements Emitter over an event repository.
type emitterUseCase struct {
	eventRepo repository.EventRepository
	logger    *slog.Logger
	enabled   bool
}

// NewEmitter creates an audit emitter. With enabled false, events are
// still mirrored to the logger but not persisted.
func NewEmitter(eventRepo repository.EventRepository, logger *slog.Logger, enabled bool) Emitter {
	return &emitterUseCase{
		eventRepo: eventRepo,
		logger:    logger,
		enabled:   enabled,
	}
}

// Record emits one audit event. Never returns or panics on failure.
func (e *emitterUseCase) Record(
	ctx context.Context,
	action auditDomain.Action,
	outcome auditDomain.Outcome,
	errorKind string,
) {
	event := &auditDomain.Event{
		ID:        uuid.Must(uuid.NewV7()),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Outcome:   outcome,
		ErrorKind: errorKind,
	}

	e.logger.Info("audit event",
		slog.String("action", string(event.Action)),
		slog.String("outcome", string(event.Outcome)),
		slog.String("error_kind", event.ErrorKind),
	)

	if !e.enabled {
		return
	}
	if err := e.eventRepo.Create(ctx, event); err != nil {
		// Swallowed: auditing never blocks data operations.
		e.logger.Warn("failed to persist audit event", slog.Any("error", err))
	}
}

// NopEmitter discards every event. Used when auditing is fully disabled
// and in tests that do not assert on the trail.
type NopEmitter struct{}

// Record does nothing.
func (NopEmitter) Record(context.Context, auditDomain.Action, auditDomain.Outcome, string) {}
