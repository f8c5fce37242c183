package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkit/ops-backend/internal/models"
)

// ToolColumns is the writable column whitelist for the tools snapshot store.
var ToolColumns = []string{"name", "url", "description", "category"}

type ToolRepo struct {
	pool *pgxpool.Pool
}

func NewToolRepo(pool *pgxpool.Pool) *ToolRepo {
	return &ToolRepo{pool: pool}
}

func (r *ToolRepo) Create(ctx context.Context, t *models.Tool) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tools (name, url, description, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, t.Name, t.URL, t.Description, t.Category,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *ToolRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	var t models.Tool
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, url, description, category, created_at, updated_at
		FROM tools WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.URL, &t.Description, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ToolRepo) Update(ctx context.Context, t *models.Tool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tools SET name = $1, url = $2, description = $3, category = $4, updated_at = now()
		WHERE id = $5
	`, t.Name, t.URL, t.Description, t.Category, t.ID)
	return err
}

func (r *ToolRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tools WHERE id = $1`, id)
	return err
}

type ToolFilter struct {
	Category *string
	Limit    int
	Offset   int
}

func (r *ToolRepo) List(ctx context.Context, f ToolFilter) ([]models.Tool, error) {
	query := `
		SELECT id, name, url, description, category, created_at, updated_at
		FROM tools
	`
	args := []any{}
	argIdx := 1

	if f.Category != nil {
		query += fmt.Sprintf(" WHERE category = $%d", argIdx)
		args = append(args, *f.Category)
		argIdx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []models.Tool
	for rows.Next() {
		var t models.Tool
		if err := rows.Scan(&t.ID, &t.Name, &t.URL, &t.Description, &t.Category,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}
