package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkit/ops-backend/internal/models"
)

const (
	defaultMutationLimit = 50
	maxMutationLimit     = 100
)

type MutationLogRepo struct {
	pool *pgxpool.Pool
}

func NewMutationLogRepo(pool *pgxpool.Pool) *MutationLogRepo {
	return &MutationLogRepo{pool: pool}
}

// Append writes one captured mutation. The database assigns id and
// occurred_at; both are filled back into rec.
func (r *MutationLogRepo) Append(ctx context.Context, rec *models.MutationRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO mutation_log (collection, record_id, action, prior_state, post_state, actor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, occurred_at
	`, rec.Collection, rec.RecordID, rec.Action, rec.PriorState, rec.PostState, rec.Actor,
	).Scan(&rec.ID, &rec.OccurredAt)
}

// clampMutationLimit applies the audit feed page bounds: unset falls back to
// the default, oversized requests are clamped to the cap rather than reset.
func clampMutationLimit(limit int) int {
	if limit <= 0 {
		return defaultMutationLimit
	}
	if limit > maxMutationLimit {
		return maxMutationLimit
	}
	return limit
}

type MutationFilter struct {
	Action     *models.Action
	Collection *string
	Limit      int
}

// Query returns one page of entries, newest first. No cursoring; the limit
// defaults to 50 and is capped at 100.
func (r *MutationLogRepo) Query(ctx context.Context, f MutationFilter) ([]models.MutationRecord, error) {
	query := `
		SELECT id, collection, record_id, action, prior_state, post_state, actor, occurred_at, consumed
		FROM mutation_log
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Action != nil {
		where = append(where, fmt.Sprintf("action = $%d", argIdx))
		args = append(args, *f.Action)
		argIdx++
	}
	if f.Collection != nil {
		where = append(where, fmt.Sprintf("collection = $%d", argIdx))
		args = append(args, *f.Collection)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d", argIdx)
	args = append(args, clampMutationLimit(f.Limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.MutationRecord
	for rows.Next() {
		var m models.MutationRecord
		if err := rows.Scan(&m.ID, &m.Collection, &m.RecordID, &m.Action,
			&m.PriorState, &m.PostState, &m.Actor, &m.OccurredAt, &m.Consumed); err != nil {
			return nil, err
		}
		recs = append(recs, m)
	}
	return recs, rows.Err()
}

func (r *MutationLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MutationRecord, error) {
	var m models.MutationRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, collection, record_id, action, prior_state, post_state, actor, occurred_at, consumed
		FROM mutation_log WHERE id = $1
	`, id).Scan(&m.ID, &m.Collection, &m.RecordID, &m.Action,
		&m.PriorState, &m.PostState, &m.Actor, &m.OccurredAt, &m.Consumed)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByIDs loads a set of entries and returns them in the order the ids were
// given. Batch rollback processes entries in caller order, so the database's
// own ordering must not leak through. IDs with no matching entry are simply
// absent from the result.
func (r *MutationLogRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MutationRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, collection, record_id, action, prior_state, post_state, actor, occurred_at, consumed
		FROM mutation_log WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]models.MutationRecord, len(ids))
	for rows.Next() {
		var m models.MutationRecord
		if err := rows.Scan(&m.ID, &m.Collection, &m.RecordID, &m.Action,
			&m.PriorState, &m.PostState, &m.Actor, &m.OccurredAt, &m.Consumed); err != nil {
			return nil, err
		}
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recs := make([]models.MutationRecord, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			recs = append(recs, m)
		}
	}
	return recs, nil
}

// MarkConsumed flips the consumed flag, but only if it is still unset.
// marked=false means the entry was already consumed (or does not exist); the
// conditional WHERE is what makes retries and concurrent sessions safe at the
// log level.
func (r *MutationLogRepo) MarkConsumed(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mutation_log SET consumed = true WHERE id = $1 AND consumed = false
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
