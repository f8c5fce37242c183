package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkit/ops-backend/internal/models"
)

// SnapshotStore is a generic keyed record store over one table, driven by
// snapshot maps instead of typed models. The rollback registry uses one per
// collection. Writes are built only from whitelisted columns so a corrupted
// snapshot cannot reach arbitrary columns, but values pass through verbatim —
// an empty string in the snapshot is written back as an empty string, never
// skipped, so a restored record matches its pre-mutation state exactly.
type SnapshotStore struct {
	pool    *pgxpool.Pool
	table   string
	columns map[string]bool
}

func NewSnapshotStore(pool *pgxpool.Pool, table string, columns []string) *SnapshotStore {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}
	return &SnapshotStore{pool: pool, table: table, columns: allowed}
}

// writableKeys returns the snapshot keys that map to real columns, sorted so
// generated SQL is deterministic.
func (s *SnapshotStore) writableKeys(data models.Snapshot) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if s.columns[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *SnapshotStore) InsertRecord(ctx context.Context, data models.Snapshot) (uuid.UUID, error) {
	keys := s.writableKeys(data)
	if len(keys) == 0 {
		return uuid.Nil, fmt.Errorf("no writable fields for insert into %s", s.table)
	}

	cols := ""
	placeholders := ""
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if i > 0 {
			cols += ", "
			placeholders += ", "
		}
		cols += k
		placeholders += fmt.Sprintf("$%d", i+1)
		args = append(args, data[k])
	}

	var id uuid.UUID
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", s.table, cols, placeholders)
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *SnapshotStore) UpdateRecord(ctx context.Context, id uuid.UUID, patch models.Snapshot) error {
	keys := s.writableKeys(patch)
	if len(keys) == 0 {
		return fmt.Errorf("no writable fields for update of %s", s.table)
	}

	set := ""
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		if i > 0 {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", k, i+1)
		args = append(args, patch[k])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $%d", s.table, set, len(keys)+1)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s not found in %s", id, s.table)
	}
	return nil
}

func (s *SnapshotStore) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s not found in %s", id, s.table)
	}
	return nil
}
