package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/tripkit/ops-backend/internal/events"
	"github.com/tripkit/ops-backend/internal/models"
	"github.com/tripkit/ops-backend/internal/repositories"
	"github.com/tripkit/ops-backend/internal/rollback"
	"go.uber.org/zap"
)

// ErrEntryNotFound means the requested mutation log entry does not exist.
var ErrEntryNotFound = errors.New("mutation entry not found")

// RollbackService is the operator-facing surface over the rollback executor:
// it loads entries by id, runs the executor, and discharges the caller-side
// obligations (cache invalidation for touched collections, audit feed
// events).
type RollbackService struct {
	mutationRepo *repositories.MutationLogRepo
	executor     *rollback.Executor
	rdb          *redis.Client
	publisher    events.Publisher
	log          *zap.Logger
}

func NewRollbackService(
	mutationRepo *repositories.MutationLogRepo,
	executor *rollback.Executor,
	rdb *redis.Client,
	publisher events.Publisher,
	log *zap.Logger,
) *RollbackService {
	return &RollbackService{
		mutationRepo: mutationRepo,
		executor:     executor,
		rdb:          rdb,
		publisher:    publisher,
		log:          log,
	}
}

func (s *RollbackService) ListMutations(ctx context.Context, f repositories.MutationFilter) ([]models.MutationRecord, error) {
	return s.mutationRepo.Query(ctx, f)
}

func (s *RollbackService) GetMutation(ctx context.Context, id uuid.UUID) (*models.MutationRecord, error) {
	rec, err := s.mutationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, loadEntryErr(id, err)
	}
	return rec, nil
}

// loadEntryErr keeps a missing row distinct from a failing store: only
// pgx.ErrNoRows becomes ErrEntryNotFound, everything else stays a load
// failure.
func loadEntryErr(id uuid.UUID, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("entry %s: %w", id, ErrEntryNotFound)
	}
	return fmt.Errorf("load entry %s: %w", id, err)
}

// Rollback reverses a single entry by id.
func (s *RollbackService) Rollback(ctx context.Context, entryID uuid.UUID) error {
	rec, err := s.mutationRepo.GetByID(ctx, entryID)
	if err != nil {
		return loadEntryErr(entryID, err)
	}

	if err := s.executor.Rollback(ctx, *rec); err != nil {
		return err
	}

	s.afterRollback(ctx, *rec)
	return nil
}

// BatchOutcome is the id-level view of a batch rollback, for HTTP callers.
type BatchOutcome struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []FailedEntry `json:"failed"`
	Missing   []uuid.UUID   `json:"missing,omitempty"`
}

type FailedEntry struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// RollbackBatch reverses the given entries in exactly the order the ids were
// supplied. IDs with no matching entry are reported separately and do not
// count toward total failure. A mixed outcome returns a nil error; only a
// batch where every loaded entry failed escalates the executor's BatchError.
func (s *RollbackService) RollbackBatch(ctx context.Context, entryIDs []uuid.UUID) (BatchOutcome, error) {
	var out BatchOutcome
	if len(entryIDs) == 0 {
		return out, fmt.Errorf("no entry ids given")
	}

	recs, err := s.mutationRepo.GetByIDs(ctx, entryIDs)
	if err != nil {
		return out, err
	}

	found := make(map[uuid.UUID]bool, len(recs))
	for _, r := range recs {
		found[r.ID] = true
	}
	for _, id := range entryIDs {
		if !found[id] {
			out.Missing = append(out.Missing, id)
		}
	}

	res, batchErr := s.executor.RollbackBatch(ctx, recs)

	for _, rec := range res.Succeeded {
		out.Succeeded = append(out.Succeeded, rec.ID)
		s.afterRollback(ctx, rec)
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, FailedEntry{ID: f.Record.ID, Reason: f.Err.Error()})
	}

	return out, batchErr
}

// afterRollback invalidates the touched collection's cached views and pushes
// the feed event. The mutation list itself is always stale after a rollback
// (the consumed flag changed), but it is never cached server-side.
func (s *RollbackService) afterRollback(ctx context.Context, rec models.MutationRecord) {
	if err := s.rdb.Del(ctx, listCacheKey(rec.Collection)).Err(); err != nil {
		s.log.Warn("list cache invalidation failed",
			zap.String("collection", rec.Collection), zap.Error(err))
	}

	_ = s.publisher.Publish(ctx, events.StreamMutations, events.Event{
		Type: events.EventMutationRolledBack,
		Payload: map[string]any{
			"entry_id":   rec.ID.String(),
			"collection": rec.Collection,
			"record_id":  rec.RecordID.String(),
			"action":     string(rec.Action),
		},
	})
}
