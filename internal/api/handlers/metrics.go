package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/api/response"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/jacobmartinez3d/log2sql/pkg/clock"
	"go.uber.org/zap"
)

// StatsProvider summarizes stored rows.
type StatsProvider interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// MetricsHandler handles metrics requests.
type MetricsHandler struct {
	stats   StatsProvider
	clock   clock.Clock
	started time.Time
	logger  logging.Logger
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(stats StatsProvider, clk clock.Clock, logger logging.Logger) *MetricsHandler {
	return &MetricsHandler{stats: stats, clock: clk, started: clk.Now(), logger: logger}
}

// MetricsResponse represents the metrics response.
type MetricsResponse struct {
	models.Stats
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
} // @name MetricsResponse

// Metrics godoc
// @Summary Get storage metrics
// @Description Returns row counts for users, levels and events, plus events per level
// @Tags System
// @Produce json
// @Success 200 {object} MetricsResponse
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /metrics [get]
func (h *MetricsHandler) Metrics(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to collect metrics", zap.Error(err))
		response.ServiceError(c, err)
		return
	}

	response.OK(c, MetricsResponse{
		Stats:         stats,
		UptimeSeconds: int64(h.clock.Now().Sub(h.started) / time.Second),
	})
}
