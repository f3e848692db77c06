package usecase_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/vitaldiary/entryvault/internal/audit/domain"
	auditRepository "github.com/vitaldiary/entryvault/internal/audit/repository"
	"github.com/vitaldiary/entryvault/internal/audit/usecase"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	"github.com/vitaldiary/entryvault/internal/storage"
)

// failingEventRepository always fails, to prove emitter errors never escape.
type failingEventRepository struct{}

func (failingEventRepository) Create(context.Context, *auditDomain.Event) error {
	return apperrors.New("storage broken")
}

func (failingEventRepository) List(context.Context) ([]*auditDomain.Event, error) {
	return nil, apperrors.New("storage broken")
}

func TestEmitter_Record(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("persists events in order", func(t *testing.T) {
		repo := auditRepository.NewStorageEventRepository(storage.NewMemoryAdapter())
		emitter := usecase.NewEmitter(repo, logger, true)

		emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeSuccess, "")
		emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeSuccess, "")
		emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindIntegrity)

		events, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 3)

		assert.Equal(t, auditDomain.ActionInitialize, events[0].Action)
		assert.Equal(t, auditDomain.ActionEncryptEntry, events[1].Action)
		assert.Equal(t, auditDomain.ActionDecryptEntry, events[2].Action)
		assert.Equal(t, auditDomain.OutcomeFailure, events[2].Outcome)
		assert.Equal(t, auditDomain.ErrorKindIntegrity, events[2].ErrorKind)

		for _, event := range events {
			assert.False(t, event.Timestamp.IsZero())
			assert.NotEmpty(t, event.ID)
		}
	})

	t.Run("repository failure is swallowed", func(t *testing.T) {
		emitter := usecase.NewEmitter(failingEventRepository{}, logger, true)

		assert.NotPanics(t, func() {
			emitter.Record(ctx, auditDomain.ActionUnlock, auditDomain.OutcomeFailure, auditDomain.ErrorKindUnwrapFailed)
		})
	})

	t.Run("disabled emitter does not persist", func(t *testing.T) {
		repo := auditRepository.NewStorageEventRepository(storage.NewMemoryAdapter())
		emitter := usecase.NewEmitter(repo, logger, false)

		emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeSuccess, "")

		events, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
