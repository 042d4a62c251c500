package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gitdocai/gitdocai/internal/config"
	"github.com/gitdocai/gitdocai/internal/engine"
	"github.com/gitdocai/gitdocai/internal/export"
	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/internal/store"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/idgen"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// GenerationHandler handles the asynchronous generation lifecycle.
type GenerationHandler struct {
	engine   *engine.Engine
	cfg      *config.Config
	store    store.Store
	exports  *export.Manager
	sessions *sessionRegistry
}

// NewGenerationHandler creates a generation handler.
func NewGenerationHandler(e *engine.Engine, cfg *config.Config, s store.Store, exports *export.Manager) *GenerationHandler {
	return &GenerationHandler{
		engine:   e,
		cfg:      cfg,
		store:    s,
		exports:  exports,
		sessions: newSessionRegistry(),
	}
}

// CreateGenerationRequest represents the request body for creating a generation
type CreateGenerationRequest struct {
	RepoURL            string   `json:"repo_url" binding:"required"`
	Kind               string   `json:"kind"`          // documentation (default) or tutorial
	TutorialType       string   `json:"tutorial_type"` // required for tutorials
	ProjectDescription string   `json:"project_description"`
	TargetAudience     string   `json:"target_audience"`
	Tone               string   `json:"tone"`
	OutputFormat       string   `json:"output_format"`
	PrimaryLanguage    string   `json:"primary_language"`
	SelectedComponents []string `json:"selected_components"`
}

// CreateGeneration handles POST /api/v1/generations
func (h *GenerationHandler) CreateGeneration(c *gin.Context) {
	var req CreateGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body: "+err.Error())
		return
	}

	kind := model.GenerationKind(req.Kind)
	if kind == "" {
		kind = model.GenerationKindDocumentation
	}
	switch kind {
	case model.GenerationKindDocumentation:
		req.TutorialType = ""
	case model.GenerationKindTutorial:
		if !generate.ValidTutorialType(req.TutorialType) {
			respondValidation(c, "Invalid tutorial_type: "+req.TutorialType)
			return
		}
	default:
		respondValidation(c, "Invalid kind: "+req.Kind)
		return
	}

	genReq := &generate.Request{
		RepoURL:            req.RepoURL,
		ProjectDescription: req.ProjectDescription,
		TargetAudience:     req.TargetAudience,
		Tone:               req.Tone,
		OutputFormat:       req.OutputFormat,
		PrimaryLanguage:    req.PrimaryLanguage,
		SelectedComponents: req.SelectedComponents,
		TutorialType:       req.TutorialType,
	}
	genReq.ApplyDefaults()
	if err := genReq.Validate(); err != nil {
		respondError(c, err)
		return
	}

	// One generation at a time per repository; a trigger while one is in
	// flight is rejected, never cancels the running one.
	if err := h.rejectInFlight(genReq.RepoURL); err != nil {
		respondError(c, err)
		return
	}

	gen := &model.Generation{
		ID:                 idgen.NewGenerationID(),
		Kind:               kind,
		TutorialType:       genReq.TutorialType,
		RepoURL:            genReq.RepoURL,
		ProjectDescription: genReq.ProjectDescription,
		TargetAudience:     genReq.TargetAudience,
		Tone:               genReq.Tone,
		OutputFormat:       genReq.OutputFormat,
		PrimaryLanguage:    genReq.PrimaryLanguage,
		SelectedComponents: model.StringArray(genReq.SelectedComponents),
		Status:             model.GenerationStatusPending,
	}

	if err := h.store.Generation().Create(gen); err != nil {
		logger.Error("Failed to create generation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to create generation",
		})
		return
	}

	if _, err := h.engine.Submit(gen); err != nil {
		if updateErr := h.store.Generation().UpdateStatusWithError(gen.ID, model.GenerationStatusFailed, err.Error()); updateErr != nil {
			logger.Error("Failed to mark generation failed", zap.Error(updateErr))
		}
		respondError(c, err)
		return
	}

	logger.Info("Generation created and submitted",
		zap.String("generation_id", gen.ID),
		zap.String("kind", string(kind)),
		zap.String("repo_url", gen.RepoURL),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"id":         gen.ID,
		"status":     gen.Status,
		"kind":       gen.Kind,
		"repo_url":   gen.RepoURL,
		"created_at": gen.CreatedAt,
	})
}

// rejectInFlight returns a conflict error when a pending or running
// generation already exists for the repository.
func (h *GenerationHandler) rejectInFlight(repoURL string) error {
	active, err := h.store.Generation().ListPendingOrRunning()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBQuery, "failed to check in-flight generations", err)
	}
	for i := range active {
		if active[i].RepoURL == repoURL {
			return errors.New(errors.ErrCodeGenerationInFlight,
				"a generation for this repository is already in progress")
		}
	}
	return nil
}

// ListGenerations handles GET /api/v1/generations
func (h *GenerationHandler) ListGenerations(c *gin.Context) {
	page, pageSize := parsePagination(c)
	status := c.Query("status")

	switch status {
	case "", string(model.GenerationStatusPending), string(model.GenerationStatusRunning),
		string(model.GenerationStatusCompleted), string(model.GenerationStatusFailed):
	default:
		respondValidation(c, "Invalid status filter: "+status)
		return
	}

	var (
		generations []model.Generation
		total       int64
		err         error
	)
	if repoURL := c.Query("repo_url"); repoURL != "" {
		generations, total, err = h.store.Generation().ListByRepository(repoURL, pageSize, (page-1)*pageSize)
	} else {
		generations, total, err = h.store.Generation().List(status, pageSize, (page-1)*pageSize)
	}
	if err != nil {
		logger.Error("Database error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Database error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      generations,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetGeneration handles GET /api/v1/generations/:id
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	gen, ok := h.loadGeneration(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gen)
}

// GetProgress handles GET /api/v1/generations/:id/progress
func (h *GenerationHandler) GetProgress(c *gin.Context) {
	gen, ok := h.loadGeneration(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step_index": gen.StepIndex,
		"step_label": gen.StepLabel,
		"percent":    gen.Percent,
		"status":     gen.Status,
		"degraded":   gen.Degraded,
	})
}

// DeleteGeneration handles DELETE /api/v1/generations/:id
func (h *GenerationHandler) DeleteGeneration(c *gin.Context) {
	gen, ok := h.loadGeneration(c)
	if !ok {
		return
	}

	if err := h.store.Generation().Delete(gen.ID); err != nil {
		logger.Error("Failed to delete generation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Database error",
		})
		return
	}
	h.sessions.drop(gen.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Generation deleted",
	})
}

// GetShareURL handles GET /api/v1/generations/:id/share. It returns the
// document's canonical page URL, the clipboard fallback used when no
// native share target is available.
func (h *GenerationHandler) GetShareURL(c *gin.Context) {
	gen, ok := h.loadGeneration(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      h.cfg.Server.BasePublicURL() + "/generations/" + gen.ID,
		"repo_url": gen.RepoURL,
		"kind":     gen.Kind,
	})
}

// loadGeneration resolves the :id path parameter to a generation,
// writing the error response itself when the lookup fails.
func (h *GenerationHandler) loadGeneration(c *gin.Context) (*model.Generation, bool) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Invalid generation ID")
		return nil, false
	}

	gen, err := h.store.Generation().GetByID(id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    errors.ErrCodeGenerationNotFound,
			"message": "Generation not found",
		})
		return nil, false
	} else if err != nil {
		logger.Error("Database error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Database error",
		})
		return nil, false
	}

	return gen, true
}
