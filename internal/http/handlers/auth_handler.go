package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tripkit/ops-backend/internal/auth"
	"github.com/tripkit/ops-backend/internal/config"
	"github.com/tripkit/ops-backend/internal/http/dto"
	"github.com/tripkit/ops-backend/internal/rbac"
	"go.uber.org/zap"
)

type AuthHandler struct {
	cfg *config.Config
	log *zap.Logger
}

func NewAuthHandler(cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, log: log}
}

// Token exchanges the shared ops API key for an operator JWT. Operators
// listed in ADMIN_EMAILS get the admin role (and with it rollback rights),
// everyone else is an editor.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "email is required"})
	}

	if h.cfg.OpsAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.cfg.OpsAPIKey)) != 1 {
		h.log.Debug("token request rejected", zap.String("email", req.Email))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid api key"})
	}

	role := rbac.RoleEditor
	if h.cfg.IsAdmin(req.Email) {
		role = rbac.RoleAdmin
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, req.Email, role, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("jwt generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.TokenResponse{Token: token, Email: req.Email, Role: role})
}
