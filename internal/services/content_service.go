package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tripkit/ops-backend/internal/config"
	"github.com/tripkit/ops-backend/internal/events"
	"github.com/tripkit/ops-backend/internal/excerpt"
	"github.com/tripkit/ops-backend/internal/models"
	"github.com/tripkit/ops-backend/internal/repositories"
	"go.uber.org/zap"
)

// ContentService owns CRUD for the content library collections. Every
// mutation it applies is captured into the mutation log with full before and
// after snapshots, which is what makes the entries reversible later.
type ContentService struct {
	contentRepo  *repositories.ContentItemRepo
	captionRepo  *repositories.CaptionRepo
	toolRepo     *repositories.ToolRepo
	mutationRepo *repositories.MutationLogRepo
	rdb          *redis.Client
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewContentService(
	contentRepo *repositories.ContentItemRepo,
	captionRepo *repositories.CaptionRepo,
	toolRepo *repositories.ToolRepo,
	mutationRepo *repositories.MutationLogRepo,
	rdb *redis.Client,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *ContentService {
	return &ContentService{
		contentRepo:  contentRepo,
		captionRepo:  captionRepo,
		toolRepo:     toolRepo,
		mutationRepo: mutationRepo,
		rdb:          rdb,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

// capture appends one mutation log entry and fans the event out. Capture is
// best-effort: a failed append is logged loudly but never fails the mutation
// the operator just made.
func (s *ContentService) capture(ctx context.Context, collection string, recordID uuid.UUID,
	action models.Action, prior, post models.Snapshot, actor string) {

	rec := &models.MutationRecord{
		Collection: collection,
		RecordID:   recordID,
		Action:     action,
		PriorState: prior,
		PostState:  post,
		Actor:      actor,
	}
	if err := s.mutationRepo.Append(ctx, rec); err != nil {
		s.log.Warn("mutation capture failed, entry will not be reversible",
			zap.String("collection", collection),
			zap.String("record_id", recordID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
		return
	}

	_ = s.publisher.Publish(ctx, events.StreamMutations, events.Event{
		Type: events.EventMutationCaptured,
		Payload: map[string]any{
			"entry_id":   rec.ID.String(),
			"collection": collection,
			"record_id":  recordID.String(),
			"action":     string(action),
			"actor":      actor,
		},
	})
}

func (s *ContentService) invalidateListCache(ctx context.Context, collection string) {
	if err := s.rdb.Del(ctx, listCacheKey(collection)).Err(); err != nil {
		s.log.Warn("list cache invalidation failed", zap.String("collection", collection), zap.Error(err))
	}
}

func listCacheKey(collection string) string {
	return fmt.Sprintf("cache:list:%s", collection)
}

func (s *ContentService) writeListCache(ctx context.Context, collection string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, listCacheKey(collection), raw, s.cfg.ListCacheTTL).Err(); err != nil {
		s.log.Debug("list cache write failed", zap.String("collection", collection), zap.Error(err))
	}
}

// --- Content items ---

func (s *ContentService) CreateContentItem(ctx context.Context, actor string, item *models.ContentItem) error {
	if item.Title == "" {
		return fmt.Errorf("title is required")
	}
	if item.Status == "" {
		item.Status = "draft"
	}

	meta, err := excerpt.Extract(item.BodyHTML, s.cfg.ExcerptMaxLen)
	if err != nil {
		return fmt.Errorf("parse body html: %w", err)
	}
	item.Excerpt = meta.Text

	if err := s.contentRepo.Create(ctx, item); err != nil {
		return err
	}

	s.capture(ctx, models.CollectionContentItems, item.ID, models.ActionCreate, nil, item.Snapshot(), actor)
	s.invalidateListCache(ctx, models.CollectionContentItems)
	return nil
}

func (s *ContentService) GetContentItem(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	return s.contentRepo.GetByID(ctx, id)
}

// ListContentItems serves the default page from redis when possible.
// Filtered queries always hit the database.
func (s *ContentService) ListContentItems(ctx context.Context, f repositories.ContentItemFilter) ([]models.ContentItem, error) {
	if f != (repositories.ContentItemFilter{}) {
		return s.contentRepo.List(ctx, f)
	}

	if raw, err := s.rdb.Get(ctx, listCacheKey(models.CollectionContentItems)).Bytes(); err == nil {
		var items []models.ContentItem
		if json.Unmarshal(raw, &items) == nil {
			return items, nil
		}
	}

	items, err := s.contentRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	s.writeListCache(ctx, models.CollectionContentItems, items)
	return items, nil
}

func (s *ContentService) UpdateContentItem(ctx context.Context, actor string, id uuid.UUID, item *models.ContentItem) (*models.ContentItem, error) {
	prior, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content item not found")
	}

	meta, err := excerpt.Extract(item.BodyHTML, s.cfg.ExcerptMaxLen)
	if err != nil {
		return nil, fmt.Errorf("parse body html: %w", err)
	}
	item.ID = id
	item.Excerpt = meta.Text
	if item.Status == "" {
		item.Status = prior.Status
	}

	if err := s.contentRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	updated, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.capture(ctx, models.CollectionContentItems, id, models.ActionUpdate, prior.Snapshot(), updated.Snapshot(), actor)
	s.invalidateListCache(ctx, models.CollectionContentItems)
	return updated, nil
}

func (s *ContentService) DeleteContentItem(ctx context.Context, actor string, id uuid.UUID) error {
	prior, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("content item not found")
	}

	if err := s.contentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.capture(ctx, models.CollectionContentItems, id, models.ActionDelete, prior.Snapshot(), nil, actor)
	s.invalidateListCache(ctx, models.CollectionContentItems)
	return nil
}

// --- Captions ---

func (s *ContentService) CreateCaption(ctx context.Context, actor string, c *models.Caption) error {
	if c.Text == "" {
		return fmt.Errorf("text is required")
	}

	if err := s.captionRepo.Create(ctx, c); err != nil {
		return err
	}

	s.capture(ctx, models.CollectionCaptions, c.ID, models.ActionCreate, nil, c.Snapshot(), actor)
	s.invalidateListCache(ctx, models.CollectionCaptions)
	return nil
}

func (s *ContentService) GetCaption(ctx context.Context, id uuid.UUID) (*models.Caption, error) {
	return s.captionRepo.GetByID(ctx, id)
}

func (s *ContentService) ListCaptions(ctx context.Context, f repositories.CaptionFilter) ([]models.Caption, error) {
	if f != (repositories.CaptionFilter{}) {
		return s.captionRepo.List(ctx, f)
	}

	if raw, err := s.rdb.Get(ctx, listCacheKey(models.CollectionCaptions)).Bytes(); err == nil {
		var captions []models.Caption
		if json.Unmarshal(raw, &captions) == nil {
			return captions, nil
		}
	}

	captions, err := s.captionRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	s.writeListCache(ctx, models.CollectionCaptions, captions)
	return captions, nil
}

func (s *ContentService) UpdateCaption(ctx context.Context, actor string, id uuid.UUID, c *models.Caption) (*models.Caption, error) {
	prior, err := s.captionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("caption not found")
	}

	c.ID = id
	if err := s.captionRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	updated, err := s.captionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.capture(ctx, models.CollectionCaptions, id, models.ActionUpdate, prior.Snapshot(), updated.Snapshot(), actor)
	s.invalidateListCache(ctx, models.CollectionCaptions)
	return updated, nil
}

func (s *ContentService) DeleteCaption(ctx context.Context, actor string, id uuid.UUID) error {
	prior, err := s.captionRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("caption not found")
	}

	if err := s.captionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.capture(ctx, models.CollectionCaptions, id, models.ActionDelete, prior.Snapshot(), nil, actor)
	s.invalidateListCache(ctx, models.CollectionCaptions)
	return nil
}

// --- Tools ---

func (s *ContentService) CreateTool(ctx context.Context, actor string, t *models.Tool) error {
	if t.Name == "" || t.URL == "" {
		return fmt.Errorf("name and url are required")
	}

	if err := s.toolRepo.Create(ctx, t); err != nil {
		return err
	}

	s.capture(ctx, models.CollectionTools, t.ID, models.ActionCreate, nil, t.Snapshot(), actor)
	s.invalidateListCache(ctx, models.CollectionTools)
	return nil
}

func (s *ContentService) GetTool(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	return s.toolRepo.GetByID(ctx, id)
}

func (s *ContentService) ListTools(ctx context.Context, f repositories.ToolFilter) ([]models.Tool, error) {
	if f != (repositories.ToolFilter{}) {
		return s.toolRepo.List(ctx, f)
	}

	if raw, err := s.rdb.Get(ctx, listCacheKey(models.CollectionTools)).Bytes(); err == nil {
		var tools []models.Tool
		if json.Unmarshal(raw, &tools) == nil {
			return tools, nil
		}
	}

	tools, err := s.toolRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	s.writeListCache(ctx, models.CollectionTools, tools)
	return tools, nil
}

func (s *ContentService) UpdateTool(ctx context.Context, actor string, id uuid.UUID, t *models.Tool) (*models.Tool, error) {
	prior, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tool not found")
	}

	t.ID = id
	if err := s.toolRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	updated, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.capture(ctx, models.CollectionTools, id, models.ActionUpdate, prior.Snapshot(), updated.Snapshot(), actor)
	s.invalidateListCache(ctx, models.CollectionTools)
	return updated, nil
}

func (s *ContentService) DeleteTool(ctx context.Context, actor string, id uuid.UUID) error {
	prior, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("tool not found")
	}

	if err := s.toolRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.capture(ctx, models.CollectionTools, id, models.ActionDelete, prior.Snapshot(), nil, actor)
	s.invalidateListCache(ctx, models.CollectionTools)
	return nil
}
