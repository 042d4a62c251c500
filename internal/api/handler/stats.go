package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/internal/store"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// StatsHandler serves aggregate generation statistics.
type StatsHandler struct {
	store store.Store
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(s store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	gens := h.store.Generation()

	total, err := gens.CountAll()
	if err != nil {
		h.dbError(c, err)
		return
	}

	byStatus := make(map[string]int64, 4)
	for _, status := range []model.GenerationStatus{
		model.GenerationStatusPending,
		model.GenerationStatusRunning,
		model.GenerationStatusCompleted,
		model.GenerationStatusFailed,
	} {
		count, err := gens.CountByStatus(status)
		if err != nil {
			h.dbError(c, err)
			return
		}
		byStatus[string(status)] = count
	}

	degraded, err := gens.CountDegraded()
	if err != nil {
		h.dbError(c, err)
		return
	}

	since := time.Now().AddDate(0, 0, -7)
	recentCompleted, err := gens.CountCompletedAfter(since)
	if err != nil {
		h.dbError(c, err)
		return
	}
	avgDuration, err := gens.GetAverageDurationAfter(since)
	if err != nil {
		h.dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"by_status": byStatus,
		"degraded":  degraded,
		"last_7_days": gin.H{
			"completed":       recentCompleted,
			"avg_duration_ms": avgDuration,
		},
	})
}

func (h *StatsHandler) dbError(c *gin.Context, err error) {
	logger.Error("Database error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    errors.ErrCodeDBQuery,
		"message": "Database error",
	})
}
