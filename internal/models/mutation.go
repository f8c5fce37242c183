package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is the closed set of mutation kinds the audit log records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Snapshot is a full field-level copy of one record, keyed by column name.
// A nil Snapshot means "no state" (no prior state for creates, no post state
// for deletes). Empty values inside a snapshot are significant and must
// round-trip verbatim.
type Snapshot map[string]any

// Clone returns a shallow copy so callers can strip fields without touching
// the logged state.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// MutationRecord is one immutable audit log entry describing a past create,
// update or delete against a content collection. The only field that ever
// changes after capture is Consumed, which flips to true exactly once when a
// rollback of this entry succeeds.
type MutationRecord struct {
	ID         uuid.UUID `json:"id"`
	Collection string    `json:"collection"`
	RecordID   uuid.UUID `json:"record_id"`
	Action     Action    `json:"action"`
	PriorState Snapshot  `json:"prior_state,omitempty"`
	PostState  Snapshot  `json:"post_state,omitempty"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
	Consumed   bool      `json:"consumed"`
}

// Validate checks the per-action snapshot invariants: creates have no prior
// state, deletes have no post state, updates have both.
func (m *MutationRecord) Validate() error {
	switch m.Action {
	case ActionCreate:
		if m.PriorState != nil {
			return fmt.Errorf("create entry %s must not carry prior state", m.ID)
		}
		if m.PostState == nil {
			return fmt.Errorf("create entry %s is missing post state", m.ID)
		}
	case ActionUpdate:
		if m.PriorState == nil {
			return fmt.Errorf("update entry %s is missing prior state", m.ID)
		}
		if m.PostState == nil {
			return fmt.Errorf("update entry %s is missing post state", m.ID)
		}
	case ActionDelete:
		if m.PriorState == nil {
			return fmt.Errorf("delete entry %s is missing prior state", m.ID)
		}
		if m.PostState != nil {
			return fmt.Errorf("delete entry %s must not carry post state", m.ID)
		}
	default:
		return fmt.Errorf("entry %s has unknown action %q", m.ID, m.Action)
	}
	return nil
}
