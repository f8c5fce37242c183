package rollback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/models"
)

// CollectionStore is the keyed record store for one collection. Store errors
// are propagated opaque; the executor does not interpret them.
type CollectionStore interface {
	InsertRecord(ctx context.Context, data models.Snapshot) (uuid.UUID, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, patch models.Snapshot) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
}

// Registry maps collection names to their stores. It is built once at wiring
// time so nothing downstream branches on collection identity.
type Registry struct {
	stores map[string]CollectionStore
}

func NewRegistry(stores map[string]CollectionStore) *Registry {
	return &Registry{stores: stores}
}

// Apply dispatches one inverse operation to the store registered for its
// collection.
func (r *Registry) Apply(ctx context.Context, op InverseOp) error {
	store, ok := r.stores[op.Collection]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, op.Collection)
	}

	switch op.Kind {
	case OpInsert:
		_, err := store.InsertRecord(ctx, op.State)
		return err
	case OpUpdate:
		return store.UpdateRecord(ctx, op.RecordID, op.State)
	case OpDelete:
		return store.DeleteRecord(ctx, op.RecordID)
	default:
		return fmt.Errorf("unknown inverse op kind %d", op.Kind)
	}
}
