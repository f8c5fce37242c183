package rollback

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPriorState means an update/delete entry carries no prior
	// snapshot, so its inverse cannot be computed. Not retryable.
	ErrMissingPriorState = errors.New("mutation entry has no prior state to restore")

	// ErrAlreadyConsumed means the entry was already rolled back. The
	// caller's selection is stale.
	ErrAlreadyConsumed = errors.New("mutation entry already rolled back")

	// ErrUnknownAction means the entry's action is outside the closed
	// create/update/delete set.
	ErrUnknownAction = errors.New("unknown mutation action")

	// ErrUnknownCollection means no store is registered for the entry's
	// collection.
	ErrUnknownCollection = errors.New("no record store registered for collection")
)

// BatchError is returned when every entry in a batch rollback failed.
type BatchError struct {
	Failed int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("all %d rollbacks in batch failed", e.Failed)
}
