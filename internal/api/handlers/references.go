package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/api/response"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"go.uber.org/zap"
)

// ReferenceService lists the lazily created reference entities.
type ReferenceService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListLevels(ctx context.Context) ([]models.LoggingLevel, error)
}

// ReferenceHandler serves users and logging levels.
type ReferenceHandler struct {
	svc    ReferenceService
	logger logging.Logger
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(svc ReferenceService, logger logging.Logger) *ReferenceHandler {
	return &ReferenceHandler{svc: svc, logger: logger.With(zap.String("handler", "reference"))}
}

// ListUsers godoc
// @Summary List users
// @Description Returns every user that has submitted at least one record
// @Tags References
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/users [get]
func (h *ReferenceHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		response.ServiceError(c, err)
		return
	}
	response.OK(c, users)
}

// ListLevels godoc
// @Summary List logging levels
// @Description Returns every logging level seen so far
// @Tags References
// @Produce json
// @Success 200 {array} models.LoggingLevel
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/levels [get]
func (h *ReferenceHandler) ListLevels(c *gin.Context) {
	levels, err := h.svc.ListLevels(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list logging levels", zap.Error(err))
		response.ServiceError(c, err)
		return
	}
	response.OK(c, levels)
}
