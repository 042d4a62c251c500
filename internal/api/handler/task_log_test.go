package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/internal/store"
)

func taskLogRouter(s store.TaskLogStore) *gin.Engine {
	r := gin.New()
	h := NewTaskLogHandler(s)
	r.GET("/api/v1/generations/:id/logs", h.GetGenerationLogs)
	return r
}

func seedTaskLogs(t *testing.T, s store.TaskLogStore, taskID string) {
	t.Helper()
	logs := []model.TaskLog{
		{TaskType: model.TaskTypeGeneration, TaskID: taskID, Level: model.LogLevelInfo, Message: "Generation started"},
		{TaskType: model.TaskTypeGeneration, TaskID: taskID, Level: model.LogLevelInfo, Message: "Repository analyzed"},
		{TaskType: model.TaskTypeGeneration, TaskID: taskID, Level: model.LogLevelError, Message: "Upstream request failed"},
	}
	require.NoError(t, s.BatchCreate(logs))
}

func TestGetGenerationLogs(t *testing.T) {
	s, cleanup := store.SetupTestTaskLogDB(t)
	t.Cleanup(cleanup)
	seedTaskLogs(t, s, "gen-1")

	r := taskLogRouter(s)
	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/generations/gen-1/logs", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, resp["total"])
	assert.Equal(t, "gen-1", resp["task_id"])
}

func TestGetGenerationLogsLevelFilter(t *testing.T) {
	s, cleanup := store.SetupTestTaskLogDB(t)
	t.Cleanup(cleanup)
	seedTaskLogs(t, s, "gen-1")

	r := taskLogRouter(s)
	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/generations/gen-1/logs?level=error", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp["total"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/generations/gen-1/logs?level=loud", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGenerationLogsEmpty(t *testing.T) {
	s, cleanup := store.SetupTestTaskLogDB(t)
	t.Cleanup(cleanup)

	r := taskLogRouter(s)
	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/generations/gen-none/logs", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, resp["total"])
}
