package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// GenerateHandler serves the synchronous generation endpoint carrying
// the original wire contract.
type GenerateHandler struct {
	generator generate.Generator
}

// NewGenerateHandler creates a synchronous generation handler.
func NewGenerateHandler(gen generate.Generator) *GenerateHandler {
	return &GenerateHandler{generator: gen}
}

// GenerateDocs handles POST /api/v1/generate-docs. The call blocks
// until the upstream responds or the fallback fires; the response body
// is the upstream contract: {success, documentation?, error?, metadata?}.
func (h *GenerateHandler) GenerateDocs(c *gin.Context) {
	var req generate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		message := err.Error()
		if appErr, ok := errors.AsAppError(err); ok {
			message = appErr.Message
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   message,
		})
		return
	}

	logger.Info("Synchronous generation requested",
		zap.String("repo_url", req.RepoURL),
		zap.String("output_format", req.OutputFormat),
	)

	result := h.generator.Generate(c.Request.Context(), &req)
	c.JSON(http.StatusOK, result)
}
