package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/api/response"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"go.uber.org/zap"
)

const (
	ServiceName = "log2sql"
	Version     = "1.0.0"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
	logger  logging.Logger
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(db Pinger, logger logging.Logger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second, logger: logger}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Service  string `json:"service" example:"log2sql"`
	Version  string `json:"version" example:"1.0.0"`
	Database string `json:"database" example:"up"`
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API service and its database
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} response.ErrorResponse "Database unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		response.ServiceUnavailable(c, "database unreachable", HealthResponse{
			Status:   "degraded",
			Service:  ServiceName,
			Version:  Version,
			Database: "down",
		})
		return
	}

	response.OK(c, HealthResponse{
		Status:   "ok",
		Service:  ServiceName,
		Version:  Version,
		Database: "up",
	})
}
