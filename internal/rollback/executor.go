package rollback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/models"
	"go.uber.org/zap"
)

// LogMarker flips an entry's consumed flag. MarkConsumed must be conditional
// (only flip entries that are still unconsumed) and report marked=false when
// the flag was already set, so concurrent operators cannot double-apply.
type LogMarker interface {
	MarkConsumed(ctx context.Context, id uuid.UUID) (marked bool, err error)
}

// Executor applies inverse operations and owns the single-entry and batch
// rollback contracts.
type Executor struct {
	registry *Registry
	marker   LogMarker
	log      *zap.Logger
}

func NewExecutor(registry *Registry, marker LogMarker, log *zap.Logger) *Executor {
	return &Executor{registry: registry, marker: marker, log: log}
}

// Rollback reverses one mutation entry. Order matters: the inverse is applied
// to the record store first, and only a confirmed success marks the entry
// consumed. A failed consumed-flag write after a successful apply leaves the
// log behind the store; that window is not transactional (the store and the
// log are separate resources) and is logged at error level.
func (e *Executor) Rollback(ctx context.Context, rec models.MutationRecord) error {
	if rec.Consumed {
		return fmt.Errorf("entry %s: %w", rec.ID, ErrAlreadyConsumed)
	}

	op, err := Resolve(rec)
	if err != nil {
		return err
	}

	if err := e.registry.Apply(ctx, op); err != nil {
		return fmt.Errorf("apply inverse %s on %s/%s: %w", op.Kind, rec.Collection, rec.RecordID, err)
	}

	marked, err := e.marker.MarkConsumed(ctx, rec.ID)
	if err != nil {
		e.log.Error("inverse applied but consumed flag not written, entry may double-apply on retry",
			zap.String("entry_id", rec.ID.String()),
			zap.String("collection", rec.Collection),
			zap.Error(err))
		return fmt.Errorf("mark entry %s consumed: %w", rec.ID, err)
	}
	if !marked {
		// Another session marked it between our guard and the write. The
		// inverse has been applied twice at the store level; surface it.
		e.log.Warn("entry was consumed concurrently during rollback",
			zap.String("entry_id", rec.ID.String()))
		return fmt.Errorf("entry %s: %w", rec.ID, ErrAlreadyConsumed)
	}

	e.log.Info("mutation rolled back",
		zap.String("entry_id", rec.ID.String()),
		zap.String("collection", rec.Collection),
		zap.String("record_id", rec.RecordID.String()),
		zap.String("action", string(rec.Action)))
	return nil
}

// FailedRollback pairs a failed entry with the reason it failed.
type FailedRollback struct {
	Record models.MutationRecord
	Err    error
}

// BatchResult reports a batch rollback outcome. A populated Failed list next
// to a populated Succeeded list is a normal partial outcome, not an error.
type BatchResult struct {
	Succeeded []models.MutationRecord
	Failed    []FailedRollback
}

// RollbackBatch reverses entries strictly in the order given, one at a time.
// Ordering stays with the caller: two entries touching the same record must
// be supplied newest-first or the restored state is wrong. One entry failing
// never stops the rest. Only when every entry fails does the call return a
// BatchError; otherwise the mixed result is returned with a nil error.
// An entry id repeated within one batch is applied once; later copies fail
// with ErrAlreadyConsumed because their consumed guard is stale by then.
// Cancellation is cooperative between entries: once ctx is done the remaining
// entries land in Failed with the context error.
func (e *Executor) RollbackBatch(ctx context.Context, recs []models.MutationRecord) (BatchResult, error) {
	var res BatchResult

	seen := make(map[uuid.UUID]bool, len(recs))
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, FailedRollback{Record: rec, Err: err})
			continue
		}
		if seen[rec.ID] {
			res.Failed = append(res.Failed, FailedRollback{
				Record: rec,
				Err:    fmt.Errorf("entry %s: %w", rec.ID, ErrAlreadyConsumed),
			})
			continue
		}
		seen[rec.ID] = true
		if err := e.Rollback(ctx, rec); err != nil {
			res.Failed = append(res.Failed, FailedRollback{Record: rec, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, rec)
	}

	if len(res.Failed) > 0 && len(res.Succeeded) == 0 {
		return res, &BatchError{Failed: len(res.Failed)}
	}
	return res, nil
}
