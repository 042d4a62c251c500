package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/internal/store"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// TaskLogHandler handles task log related HTTP requests
type TaskLogHandler struct {
	store store.TaskLogStore
}

// NewTaskLogHandler creates a new task log handler
func NewTaskLogHandler(s store.TaskLogStore) *TaskLogHandler {
	return &TaskLogHandler{store: s}
}

// taskLogPagination configuration
const (
	defaultLogPage     = 1
	defaultLogPageSize = 50
	minLogPageSize     = 1
	maxLogPageSize     = 500
)

// GetGenerationLogs handles GET /api/v1/generations/:id/logs
func (h *TaskLogHandler) GetGenerationLogs(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Invalid generation ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultLogPage)))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultLogPageSize)))
	level := c.Query("level")

	if page < 1 {
		page = defaultLogPage
	}
	if pageSize < minLogPageSize || pageSize > maxLogPageSize {
		pageSize = defaultLogPageSize
	}

	var levelFilter model.LogLevel
	if level != "" {
		switch level {
		case "debug", "info", "warn", "error", "fatal":
			levelFilter = model.LogLevel(level)
		default:
			respondValidation(c, "Invalid log level, must be one of: debug, info, warn, error, fatal")
			return
		}
	}

	var (
		logs  []model.TaskLog
		total int64
		err   error
	)
	if levelFilter != "" {
		logs, total, err = h.store.GetByTaskIDAndLevel(model.TaskTypeGeneration, id, levelFilter, page, pageSize)
	} else {
		logs, total, err = h.store.GetByTaskIDWithPagination(model.TaskTypeGeneration, id, page, pageSize)
	}
	if err != nil {
		logger.Error("Failed to fetch task logs",
			zap.String("task_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to fetch logs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      logs,
		"total":     total,
		"task_type": model.TaskTypeGeneration,
		"task_id":   id,
	})
}
