package rollback

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/models"
)

func TestResolveCreate(t *testing.T) {
	recordID := uuid.New()
	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionTools,
		RecordID:   recordID,
		Action:     models.ActionCreate,
		PostState:  models.Snapshot{"name": "maps"},
	}

	op, err := Resolve(rec)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if op.Kind != OpDelete {
		t.Errorf("op.Kind = %v, want OpDelete", op.Kind)
	}
	if op.Collection != models.CollectionTools {
		t.Errorf("op.Collection = %q, want %q", op.Collection, models.CollectionTools)
	}
	if op.RecordID != recordID {
		t.Errorf("op.RecordID = %v, want %v", op.RecordID, recordID)
	}
	if op.State != nil {
		t.Errorf("create inverse should carry no state, got %v", op.State)
	}
}

func TestResolveUpdate(t *testing.T) {
	recordID := uuid.New()
	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionCaptions,
		RecordID:   recordID,
		Action:     models.ActionUpdate,
		PriorState: models.Snapshot{
			"id":         recordID.String(),
			"text":       "old",
			"hashtags":   "",
			"created_at": "2026-01-01T00:00:00Z",
		},
		PostState: models.Snapshot{"text": "new", "hashtags": "#b"},
	}

	op, err := Resolve(rec)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if op.Kind != OpUpdate {
		t.Errorf("op.Kind = %v, want OpUpdate", op.Kind)
	}
	if op.State["text"] != "old" {
		t.Errorf("op.State[text] = %v, want old", op.State["text"])
	}
	// empty values survive sanitization verbatim
	if v, ok := op.State["hashtags"]; !ok || v != "" {
		t.Errorf("empty hashtags should pass through, got %v (present=%v)", v, ok)
	}
	// identifier and creation timestamp never round-trip
	if _, ok := op.State["id"]; ok {
		t.Error("sanitize left id in restore state")
	}
	if _, ok := op.State["created_at"]; ok {
		t.Error("sanitize left created_at in restore state")
	}
}

func TestResolveDelete(t *testing.T) {
	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionContentItems,
		RecordID:   uuid.New(),
		Action:     models.ActionDelete,
		PriorState: models.Snapshot{"title": "lisbon weekend", "destination": nil},
	}

	op, err := Resolve(rec)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if op.Kind != OpInsert {
		t.Errorf("op.Kind = %v, want OpInsert", op.Kind)
	}
	if op.State["title"] != "lisbon weekend" {
		t.Errorf("op.State[title] = %v", op.State["title"])
	}
	// nil values are still present keys after sanitization
	if _, ok := op.State["destination"]; !ok {
		t.Error("nil destination should stay in restore state")
	}
}

func TestResolveMissingPriorState(t *testing.T) {
	for _, action := range []models.Action{models.ActionUpdate, models.ActionDelete} {
		t.Run(string(action), func(t *testing.T) {
			rec := models.MutationRecord{
				ID:         uuid.New(),
				Collection: models.CollectionCaptions,
				RecordID:   uuid.New(),
				Action:     action,
				PostState:  models.Snapshot{"text": "new"},
			}
			_, err := Resolve(rec)
			if !errors.Is(err, ErrMissingPriorState) {
				t.Errorf("Resolve() error = %v, want ErrMissingPriorState", err)
			}
		})
	}
}

func TestResolveUnknownAction(t *testing.T) {
	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionCaptions,
		RecordID:   uuid.New(),
		Action:     models.Action("truncate"),
	}
	_, err := Resolve(rec)
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Resolve() error = %v, want ErrUnknownAction", err)
	}
}

func TestSanitizeDoesNotMutateLoggedState(t *testing.T) {
	prior := models.Snapshot{"id": "x", "text": "old", "created_at": "y"}
	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionCaptions,
		RecordID:   uuid.New(),
		Action:     models.ActionUpdate,
		PriorState: prior,
		PostState:  models.Snapshot{"text": "new"},
	}

	if _, err := Resolve(rec); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if _, ok := prior["id"]; !ok {
		t.Error("Resolve stripped id from the logged prior state itself")
	}
	if _, ok := prior["created_at"]; !ok {
		t.Error("Resolve stripped created_at from the logged prior state itself")
	}
}
