package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/export"
	"github.com/gitdocai/gitdocai/internal/markdown"
	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
	"github.com/gitdocai/gitdocai/pkg/telemetry"
)

// GetPreview handles GET /api/v1/generations/:id/preview. The fragment
// is sanitized before it leaves the service; callers may treat it as
// displayable HTML.
func (h *GenerationHandler) GetPreview(c *gin.Context) {
	gen, ok := h.loadCompletedGeneration(c)
	if !ok {
		return
	}

	session := h.sessions.get(gen.ID, gen.Document)
	text := session.CurrentText()

	c.JSON(http.StatusOK, gin.H{
		"html":    markdown.RenderPreview(text),
		"stats":   markdown.Measure(text),
		"editing": session.Editing(),
		"edited":  gen.Edited(),
	})
}

// StartEdit handles POST /api/v1/generations/:id/edit. Starting while
// already editing keeps the current buffer.
func (h *GenerationHandler) StartEdit(c *gin.Context) {
	gen, ok := h.loadCompletedGeneration(c)
	if !ok {
		return
	}

	session := h.sessions.get(gen.ID, gen.Document)
	session.StartEdit()

	c.JSON(http.StatusOK, gin.H{
		"text":    session.CurrentText(),
		"editing": true,
	})
}

// SaveEditRequest carries the edited document text.
type SaveEditRequest struct {
	Text string `json:"text"`
}

// SaveEdit handles PUT /api/v1/generations/:id/edit. The commit is
// permanent: it replaces the stored document while keeping the original
// generated text for reference.
func (h *GenerationHandler) SaveEdit(c *gin.Context) {
	gen, ok := h.loadCompletedGeneration(c)
	if !ok {
		return
	}

	var req SaveEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body: "+err.Error())
		return
	}

	session, exists := h.sessions.peek(gen.ID)
	if !exists || !session.Editing() {
		respondValidation(c, "No edit in progress")
		return
	}

	if err := session.SetBuffer(req.Text); err != nil {
		respondError(c, err)
		return
	}
	text, err := session.SaveEdit()
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Generation().UpdateDocument(gen.ID, text); err != nil {
		logger.Error("Failed to persist edited document",
			zap.String("generation_id", gen.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to save document",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":    text,
		"editing": false,
	})
}

// CancelEdit handles DELETE /api/v1/generations/:id/edit. The buffer is
// discarded and the committed text restored byte for byte.
func (h *GenerationHandler) CancelEdit(c *gin.Context) {
	gen, ok := h.loadCompletedGeneration(c)
	if !ok {
		return
	}

	if session, exists := h.sessions.peek(gen.ID); exists {
		session.CancelEdit()
	}

	session := h.sessions.get(gen.ID, gen.Document)
	c.JSON(http.StatusOK, gin.H{
		"text":    session.CurrentText(),
		"editing": false,
	})
}

// ExportGeneration handles GET /api/v1/generations/:id/export?format=.
// Exports always read the current text, edits included, and never
// mutate stored document state.
func (h *GenerationHandler) ExportGeneration(c *gin.Context) {
	gen, ok := h.loadCompletedGeneration(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatMarkdown)))
	if err != nil {
		respondError(c, err)
		return
	}

	text := gen.Document
	if session, exists := h.sessions.peek(gen.ID); exists {
		text = session.CurrentText()
	}

	generatedAt := time.Now()
	if gen.CompletedAt != nil {
		generatedAt = *gen.CompletedAt
	}
	doc := &export.Document{
		Content:      text,
		Kind:         gen.Kind,
		TutorialType: gen.TutorialType,
		GeneratedAt:  generatedAt,
	}

	start := time.Now()
	data, err := h.exports.Export(doc, format)
	telemetry.GetMetrics().RecordExport(c.Request.Context(), string(format), err == nil, time.Since(start).Seconds())
	if err != nil {
		respondError(c, err)
		return
	}

	filename := h.exports.Filename(doc, format)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, h.exports.ContentType(format), data)
}

// loadCompletedGeneration resolves :id and requires a completed
// generation with a document.
func (h *GenerationHandler) loadCompletedGeneration(c *gin.Context) (*model.Generation, bool) {
	gen, ok := h.loadGeneration(c)
	if !ok {
		return nil, false
	}

	if gen.Status != model.GenerationStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeGenerationPending,
			"message": "Generation is not completed yet",
		})
		return nil, false
	}
	if gen.Document == "" {
		respondValidation(c, "Generation has no document")
		return nil, false
	}

	return gen, true
}
