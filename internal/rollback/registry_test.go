package rollback

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/models"
)

func TestRegistryUnknownCollection(t *testing.T) {
	reg := NewRegistry(map[string]CollectionStore{
		models.CollectionCaptions: newFakeStore(),
	})

	err := reg.Apply(context.Background(), InverseOp{
		Kind:       OpDelete,
		Collection: "subscribers",
		RecordID:   uuid.New(),
	})
	if !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("Apply() error = %v, want ErrUnknownCollection", err)
	}
}

func TestRegistryDispatch(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(map[string]CollectionStore{
		models.CollectionTools: store,
	})

	tests := []struct {
		name string
		op   InverseOp
		want OpKind
	}{
		{"insert", InverseOp{Kind: OpInsert, Collection: models.CollectionTools, State: models.Snapshot{"name": "x"}}, OpInsert},
		{"update", InverseOp{Kind: OpUpdate, Collection: models.CollectionTools, RecordID: uuid.New(), State: models.Snapshot{"name": "y"}}, OpUpdate},
		{"delete", InverseOp{Kind: OpDelete, Collection: models.CollectionTools, RecordID: uuid.New()}, OpDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(store.calls)
			if err := reg.Apply(context.Background(), tt.op); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if len(store.calls) != before+1 {
				t.Fatalf("store received %d new calls, want 1", len(store.calls)-before)
			}
			if got := store.calls[len(store.calls)-1].kind; got != tt.want {
				t.Errorf("dispatched kind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpKindString(t *testing.T) {
	tests := []struct {
		kind OpKind
		want string
	}{
		{OpInsert, "insert"},
		{OpUpdate, "update"},
		{OpDelete, "delete"},
		{OpKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("OpKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
