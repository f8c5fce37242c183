package rollback

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/models"
)

// OpKind is the closed set of record store operations an inverse can be.
type OpKind int

const (
	OpInsert OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// InverseOp is the store call that undoes one logged mutation. State is only
// set for OpInsert and OpUpdate.
type InverseOp struct {
	Kind       OpKind
	Collection string
	RecordID   uuid.UUID
	State      models.Snapshot
}

// sanitizedFields are never round-tripped into an inverse write: the id is
// supplied by the caller (update/delete) or generated by the store (insert),
// and the creation timestamp is immutable.
var sanitizedFields = [...]string{"id", "created_at"}

func sanitize(state models.Snapshot) models.Snapshot {
	out := state.Clone()
	for _, f := range sanitizedFields {
		delete(out, f)
	}
	return out
}

// Resolve computes the inverse operation for one mutation entry. It is pure:
// no store access, no side effects.
//
//	create -> delete the record that was created
//	update -> write the prior snapshot back over the record
//	delete -> re-insert the prior snapshot
//
// Update and delete entries with no prior snapshot fail with
// ErrMissingPriorState; nothing is applied.
func Resolve(rec models.MutationRecord) (InverseOp, error) {
	switch rec.Action {
	case models.ActionCreate:
		return InverseOp{
			Kind:       OpDelete,
			Collection: rec.Collection,
			RecordID:   rec.RecordID,
		}, nil
	case models.ActionUpdate:
		if rec.PriorState == nil {
			return InverseOp{}, fmt.Errorf("entry %s: %w", rec.ID, ErrMissingPriorState)
		}
		return InverseOp{
			Kind:       OpUpdate,
			Collection: rec.Collection,
			RecordID:   rec.RecordID,
			State:      sanitize(rec.PriorState),
		}, nil
	case models.ActionDelete:
		if rec.PriorState == nil {
			return InverseOp{}, fmt.Errorf("entry %s: %w", rec.ID, ErrMissingPriorState)
		}
		return InverseOp{
			Kind:       OpInsert,
			Collection: rec.Collection,
			RecordID:   rec.RecordID,
			State:      sanitize(rec.PriorState),
		}, nil
	default:
		return InverseOp{}, fmt.Errorf("entry %s: %w: %q", rec.ID, ErrUnknownAction, rec.Action)
	}
}
