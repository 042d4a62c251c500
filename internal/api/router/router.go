// Package router sets up the API routes for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/gitdocai/gitdocai/consts"
	"github.com/gitdocai/gitdocai/internal/api/handler"
	"github.com/gitdocai/gitdocai/internal/api/middleware"
	"github.com/gitdocai/gitdocai/internal/config"
	"github.com/gitdocai/gitdocai/internal/database"
	"github.com/gitdocai/gitdocai/internal/engine"
	"github.com/gitdocai/gitdocai/internal/export"
	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/internal/store"
)

// Setup configures all API routes.
func Setup(r *gin.Engine, e *engine.Engine, cfg *config.Config, s store.Store, client *generate.Client, exports *export.Manager) {
	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	// Apply OpenTelemetry tracing middleware
	r.Use(otelgin.Middleware(consts.ServiceName))

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(client)
	generateHandler := handler.NewGenerateHandler(client)
	generationHandler := handler.NewGenerationHandler(e, cfg, s, exports)
	statsHandler := handler.NewStatsHandler(s)

	// Health check endpoint (public)
	r.GET("/health", healthHandler.GetHealth)

	// API v1 routes
	v1 := r.Group("/api/v1")

	v1.GET("/health", healthHandler.GetHealth)
	v1.GET("/upstream/health", healthHandler.GetUpstreamHealth)

	// Synchronous generation, original wire contract
	v1.POST("/generate-docs", generateHandler.GenerateDocs)

	// Aggregate statistics
	v1.GET("/stats", statsHandler.GetStats)

	// Queue status for monitoring
	v1.GET("/queue/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"queued": e.QueuedCount(),
		})
	})

	// Asynchronous generation lifecycle
	generations := v1.Group("/generations")
	{
		generations.POST("", generationHandler.CreateGeneration)
		generations.GET("", generationHandler.ListGenerations)
		generations.GET("/:id", generationHandler.GetGeneration)
		generations.GET("/:id/progress", generationHandler.GetProgress)
		generations.GET("/:id/preview", generationHandler.GetPreview)
		generations.POST("/:id/edit", generationHandler.StartEdit)
		generations.PUT("/:id/edit", generationHandler.SaveEdit)
		generations.DELETE("/:id/edit", generationHandler.CancelEdit)
		generations.GET("/:id/export", generationHandler.ExportGeneration)
		generations.GET("/:id/share", generationHandler.GetShareURL)
		generations.DELETE("/:id", generationHandler.DeleteGeneration)
	}

	// Task log routes, backed by the separate task_logs.db
	if database.IsTaskLogDBInitialized() {
		taskLogStore := store.NewTaskLogStore(database.GetTaskLogDB())
		taskLogHandler := handler.NewTaskLogHandler(taskLogStore)
		generations.GET("/:id/logs", taskLogHandler.GetGenerationLogs)
	}
}
