package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkit/ops-backend/internal/models"
)

// ContentItemColumns is the writable column whitelist for the content_items
// snapshot store. id and created_at are excluded: neither is ever part of an
// inverse write.
var ContentItemColumns = []string{"title", "body_html", "excerpt", "destination", "season", "status"}

type ContentItemRepo struct {
	pool *pgxpool.Pool
}

func NewContentItemRepo(pool *pgxpool.Pool) *ContentItemRepo {
	return &ContentItemRepo{pool: pool}
}

func (r *ContentItemRepo) Create(ctx context.Context, item *models.ContentItem) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO content_items (title, body_html, excerpt, destination, season, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, item.Title, item.BodyHTML, item.Excerpt, item.Destination, item.Season, item.Status,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *ContentItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, body_html, excerpt, destination, season, status, created_at, updated_at
		FROM content_items WHERE id = $1
	`, id).Scan(&item.ID, &item.Title, &item.BodyHTML, &item.Excerpt,
		&item.Destination, &item.Season, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ContentItemRepo) Update(ctx context.Context, item *models.ContentItem) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE content_items SET title = $1, body_html = $2, excerpt = $3,
		       destination = $4, season = $5, status = $6, updated_at = now()
		WHERE id = $7
	`, item.Title, item.BodyHTML, item.Excerpt, item.Destination, item.Season, item.Status, item.ID)
	return err
}

func (r *ContentItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM content_items WHERE id = $1`, id)
	return err
}

type ContentItemFilter struct {
	Status      *string
	Destination *string
	Limit       int
	Offset      int
}

func (r *ContentItemRepo) List(ctx context.Context, f ContentItemFilter) ([]models.ContentItem, error) {
	query := `
		SELECT id, title, body_html, excerpt, destination, season, status, created_at, updated_at
		FROM content_items
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.Destination != nil {
		where = append(where, fmt.Sprintf("destination = $%d", argIdx))
		args = append(args, *f.Destination)
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

	var items []models.ContentItem
	for rows.Next() {
		var item models.ContentItem
		if err := rows.Scan(&item.ID, &item.Title, &item.BodyHTML, &item.Excerpt,
			&item.Destination, &item.Season, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
