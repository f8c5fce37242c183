package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/http/dto"
	"github.com/tripkit/ops-backend/internal/models"
	"github.com/tripkit/ops-backend/internal/repositories"
	"github.com/tripkit/ops-backend/internal/rollback"
	"github.com/tripkit/ops-backend/internal/services"
	"go.uber.org/zap"
)

type MutationHandler struct {
	rollbackService *services.RollbackService
	log             *zap.Logger
}

func NewMutationHandler(rollbackService *services.RollbackService, log *zap.Logger) *MutationHandler {
	return &MutationHandler{rollbackService: rollbackService, log: log}
}

// ListMutations serves the audit feed page: newest first, optionally filtered
// by action and collection.
func (h *MutationHandler) ListMutations(c *fiber.Ctx) error {
	filter := repositories.MutationFilter{}

	if v := c.Query("action"); v != "" {
		action := models.Action(v)
		if !action.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid action filter"})
		}
		filter.Action = &action
	}
	if v := c.Query("collection"); v != "" {
		filter.Collection = &v
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	recs, err := h.rollbackService.ListMutations(c.Context(), filter)
	if err != nil {
		h.log.Error("list mutations failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: recs})
}

func (h *MutationHandler) GetMutation(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid entry id"})
	}

	rec, err := h.rollbackService.GetMutation(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "mutation entry not found"})
		}
		h.log.Error("get mutation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: rec})
}

// Rollback reverses a single entry.
func (h *MutationHandler) Rollback(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid entry id"})
	}

	if err := h.rollbackService.Rollback(c.Context(), id); err != nil {
		return c.Status(rollbackStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

// RollbackBatch reverses a selection of entries in the order given. A mixed
// outcome is a 200 with both lists; only a batch where every entry failed
// escalates to an error status.
func (h *MutationHandler) RollbackBatch(c *fiber.Ctx) error {
	var req dto.BatchRollbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if len(req.EntryIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "entry_ids is required"})
	}

	ids := make([]uuid.UUID, 0, len(req.EntryIDs))
	for _, s := range req.EntryIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid entry id: " + s})
		}
		ids = append(ids, id)
	}

	outcome, err := h.rollbackService.RollbackBatch(c.Context(), ids)
	resp := batchResponse(outcome)

	if err != nil {
		var batchErr *rollback.BatchError
		if errors.As(err, &batchErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":  err.Error(),
				"result": resp,
			})
		}
		h.log.Error("batch rollback failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: resp})
}

func batchResponse(outcome services.BatchOutcome) dto.BatchRollbackResponse {
	resp := dto.BatchRollbackResponse{
		Succeeded: make([]string, 0, len(outcome.Succeeded)),
		Failed:    make([]dto.FailedEntryResult, 0, len(outcome.Failed)),
	}
	for _, id := range outcome.Succeeded {
		resp.Succeeded = append(resp.Succeeded, id.String())
	}
	for _, f := range outcome.Failed {
		resp.Failed = append(resp.Failed, dto.FailedEntryResult{ID: f.ID.String(), Reason: f.Reason})
	}
	for _, id := range outcome.Missing {
		resp.Missing = append(resp.Missing, id.String())
	}
	return resp
}

func rollbackStatus(err error) int {
	switch {
	case errors.Is(err, rollback.ErrAlreadyConsumed):
		return fiber.StatusConflict
	case errors.Is(err, rollback.ErrMissingPriorState):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, rollback.ErrUnknownCollection), errors.Is(err, rollback.ErrUnknownAction):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrEntryNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}
