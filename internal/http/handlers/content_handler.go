package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/http/dto"
	"github.com/tripkit/ops-backend/internal/middleware"
	"github.com/tripkit/ops-backend/internal/models"
	"github.com/tripkit/ops-backend/internal/repositories"
	"github.com/tripkit/ops-backend/internal/services"
	"go.uber.org/zap"
)

type ContentHandler struct {
	contentService *services.ContentService
	log            *zap.Logger
}

func NewContentHandler(contentService *services.ContentService, log *zap.Logger) *ContentHandler {
	return &ContentHandler{contentService: contentService, log: log}
}

func parseLimitOffset(c *fiber.Ctx) (int, int) {
	limit, offset := 0, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}

func optQuery(c *fiber.Ctx, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

// --- Content items ---

func (h *ContentHandler) CreateContentItem(c *fiber.Ctx) error {
	var req dto.ContentItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	item := &models.ContentItem{
		Title:       req.Title,
		BodyHTML:    req.BodyHTML,
		Destination: req.Destination,
		Season:      req.Season,
		Status:      req.Status,
	}

	actor := middleware.GetUserEmail(c)
	if err := h.contentService.CreateContentItem(c.Context(), actor, item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: item})
}

func (h *ContentHandler) GetContentItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid content item id"})
	}

	item, err := h.contentService.GetContentItem(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "content item not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: item})
}

func (h *ContentHandler) ListContentItems(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c)
	filter := repositories.ContentItemFilter{
		Status:      optQuery(c, "status"),
		Destination: optQuery(c, "destination"),
		Limit:       limit,
		Offset:      offset,
	}

	items, err := h.contentService.ListContentItems(c.Context(), filter)
	if err != nil {
		h.log.Error("list content items failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: items})
}

func (h *ContentHandler) UpdateContentItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid content item id"})
	}

	var req dto.ContentItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	item := &models.ContentItem{
		Title:       req.Title,
		BodyHTML:    req.BodyHTML,
		Destination: req.Destination,
		Season:      req.Season,
		Status:      req.Status,
	}

	actor := middleware.GetUserEmail(c)
	updated, err := h.contentService.UpdateContentItem(c.Context(), actor, id, item)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *ContentHandler) DeleteContentItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid content item id"})
	}

	actor := middleware.GetUserEmail(c)
	if err := h.contentService.DeleteContentItem(c.Context(), actor, id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

// --- Captions ---

func (h *ContentHandler) CreateCaption(c *fiber.Ctx) error {
	var req dto.CaptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	caption := &models.Caption{
		Text:     req.Text,
		Hashtags: req.Hashtags,
		Platform: req.Platform,
	}
	if req.ContentItemID != nil {
		itemID, err := uuid.Parse(*req.ContentItemID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid content_item_id"})
		}
		caption.ContentItemID = &itemID
	}

	actor := middleware.GetUserEmail(c)
	if err := h.contentService.CreateCaption(c.Context(), actor, caption); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: caption})
}

func (h *ContentHandler) GetCaption(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid caption id"})
	}

	caption, err := h.contentService.GetCaption(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "caption not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: caption})
}

func (h *ContentHandler) ListCaptions(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c)
	filter := repositories.CaptionFilter{
		Platform: optQuery(c, "platform"),
		Limit:    limit,
		Offset:   offset,
	}
	if v := c.Query("content_item_id"); v != "" {
		itemID, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid content_item_id"})
		}
		filter.ContentItemID = &itemID
	}

	captions, err := h.contentService.ListCaptions(c.Context(), filter)
	if err != nil {
		h.log.Error("list captions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: captions})
}

func (h *ContentHandler) UpdateCaption(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid caption id"})
	}

	var req dto.CaptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	caption := &models.Caption{
		Text:     req.Text,
		Hashtags: req.Hashtags,
		Platform: req.Platform,
	}
	if req.ContentItemID != nil {
		itemID, err := uuid.Parse(*req.ContentItemID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid content_item_id"})
		}
		caption.ContentItemID = &itemID
	}

	actor := middleware.GetUserEmail(c)
	updated, err := h.contentService.UpdateCaption(c.Context(), actor, id, caption)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *ContentHandler) DeleteCaption(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid caption id"})
	}

	actor := middleware.GetUserEmail(c)
	if err := h.contentService.DeleteCaption(c.Context(), actor, id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

// --- Tools ---

func (h *ContentHandler) CreateTool(c *fiber.Ctx) error {
	var req dto.ToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	tool := &models.Tool{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Category:    req.Category,
	}

	actor := middleware.GetUserEmail(c)
	if err := h.contentService.CreateTool(c.Context(), actor, tool); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: tool})
}

func (h *ContentHandler) GetTool(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tool id"})
	}

	tool, err := h.contentService.GetTool(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "tool not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: tool})
}

func (h *ContentHandler) ListTools(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c)
	filter := repositories.ToolFilter{
		Category: optQuery(c, "category"),
		Limit:    limit,
		Offset:   offset,
	}

	tools, err := h.contentService.ListTools(c.Context(), filter)
	if err != nil {
		h.log.Error("list tools failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: tools})
}

func (h *ContentHandler) UpdateTool(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tool id"})
	}

	var req dto.ToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	tool := &models.Tool{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Category:    req.Category,
	}

	actor := middleware.GetUserEmail(c)
	updated, err := h.contentService.UpdateTool(c.Context(), actor, id, tool)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *ContentHandler) DeleteTool(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tool id"})
	}

	actor := middleware.GetUserEmail(c)
	if err := h.contentService.DeleteTool(c.Context(), actor, id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
