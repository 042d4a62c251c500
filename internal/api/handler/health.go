package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/database"
	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// healthServiceName is the service identifier reported by the health
// endpoint. The value mirrors the upstream API's own health response.
const healthServiceName = "GitDocAI API"

// UpstreamProber probes the upstream generation service health.
type UpstreamProber interface {
	HealthCheck(ctx context.Context) (*generate.HealthStatus, error)
}

// HealthHandler serves the service and upstream health endpoints.
type HealthHandler struct {
	prober UpstreamProber
}

// NewHealthHandler creates a health handler. The prober is usually the
// upstream API client.
func NewHealthHandler(prober UpstreamProber) *HealthHandler {
	return &HealthHandler{prober: prober}
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := gin.H{
		"status":  "healthy",
		"service": healthServiceName,
	}

	// A broken database turns the probe unhealthy; the upstream service
	// does not (generation degrades to the mock fallback instead).
	if err := database.HealthCheck(); err != nil {
		logger.Warn("Database health check failed", zap.Error(err))
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUpstreamHealth handles GET /api/v1/upstream/health. The result is
// advisory: a dead upstream never blocks generation.
func (h *HealthHandler) GetUpstreamHealth(c *gin.Context) {
	status, err := h.prober.HealthCheck(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    errors.ErrCodeUpstreamUnavailable,
			"message": "upstream generation service is unreachable",
			"healthy": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status.Status,
		"service": status.Service,
		"healthy": status.Healthy(),
	})
}
