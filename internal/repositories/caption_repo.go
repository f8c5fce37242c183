package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkit/ops-backend/internal/models"
)

// CaptionColumns is the writable column whitelist for the captions snapshot
// store.
var CaptionColumns = []string{"content_item_id", "text", "hashtags", "platform"}

type CaptionRepo struct {
	pool *pgxpool.Pool
}

func NewCaptionRepo(pool *pgxpool.Pool) *CaptionRepo {
	return &CaptionRepo{pool: pool}
}

func (r *CaptionRepo) Create(ctx context.Context, c *models.Caption) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO captions (content_item_id, text, hashtags, platform)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, c.ContentItemID, c.Text, c.Hashtags, c.Platform,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CaptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Caption, error) {
	var c models.Caption
	err := r.pool.QueryRow(ctx, `
		SELECT id, content_item_id, text, hashtags, platform, created_at, updated_at
		FROM captions WHERE id = $1
	`, id).Scan(&c.ID, &c.ContentItemID, &c.Text, &c.Hashtags, &c.Platform, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CaptionRepo) Update(ctx context.Context, c *models.Caption) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE captions SET content_item_id = $1, text = $2, hashtags = $3, platform = $4, updated_at = now()
		WHERE id = $5
	`, c.ContentItemID, c.Text, c.Hashtags, c.Platform, c.ID)
	return err
}

func (r *CaptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM captions WHERE id = $1`, id)
	return err
}

type CaptionFilter struct {
	ContentItemID *uuid.UUID
	Platform      *string
	Limit         int
	Offset        int
}

func (r *CaptionRepo) List(ctx context.Context, f CaptionFilter) ([]models.Caption, error) {
	query := `
		SELECT id, content_item_id, text, hashtags, platform, created_at, updated_at
		FROM captions
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ContentItemID != nil {
		where = append(where, fmt.Sprintf("content_item_id = $%d", argIdx))
		args = append(args, *f.ContentItemID)
		argIdx++
	}
	if f.Platform != nil {
		where = append(where, fmt.Sprintf("platform = $%d", argIdx))
		args = append(args, *f.Platform)
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

	var captions []models.Caption
	for rows.Next() {
		var c models.Caption
		if err := rows.Scan(&c.ID, &c.ContentItemID, &c.Text, &c.Hashtags, &c.Platform,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		captions = append(captions, c)
	}
	return captions, rows.Err()
}
