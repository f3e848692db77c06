// Package repository persists audit events through the storage adapter.
package repository

import (
	"context"
	"encoding/json"

	auditDomain "github.com/vitaldiary/entryvault/internal/audit/domain"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	"github.com/vitaldiary/entryvault/internal/storage"
)

// EventRepository defines the persistence contract for audit events.
type EventRepository interface {
	// Create persists an audit event.
	Create(ctx context.Context, event *auditDomain.Event) error

	// List returns all persisted events in creation order.
	List(ctx context.Context) ([]*auditDomain.Event, error)
}

// storageEventRepository implements EventRepository on a storage.Adapter.
// Events are keyed by their UUIDv7 id, so the adapter's lexicographic
// listing yields creation order for free.
type storageEventRepository struct {
	adapter storage.Adapter
}

// NewStorageEventRepository creates an EventRepository backed by adapter.
func NewStorageEventRepository(adapter storage.Adapter) EventRepository {
	return &storageEventRepository{adapter: adapter}
}

// Create persists an audit event.
func (r *storageEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode audit event")
	}
	if err := r.adapter.Put(ctx, storage.NamespaceAudit, event.ID.String(), data); err != nil {
		return apperrors.Wrap(err, "failed to persist audit event")
	}
	return nil
}

// List returns all persisted events in creation order.
func (r *storageEventRepository) List(ctx context.Context) ([]*auditDomain.Event, error) {
	ids, err := r.adapter.List(ctx, storage.NamespaceAudit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}

	events := make([]*auditDomain.Event, 0, len(ids))
	for _, id := range ids {
		data, err := r.adapter.Get(ctx, storage.NamespaceAudit, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, apperrors.Wrap(err, "failed to read audit event")
		}

		var event auditDomain.Event
		if err := json.Unmarshal(data, &event); err != nil {
			// A corrupted event is skipped rather than blocking the rest
			// of the trail.
			continue
		}
		events = append(events, &event)
	}
	return events, nil
}
