package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitdocai/gitdocai/internal/model"
)

func createTestLogs(t *testing.T, s TaskLogStore, taskID string) {
	t.Helper()
	logs := []model.TaskLog{
		{TaskType: model.TaskTypeGeneration, TaskID: taskID, Level: model.LogLevelDebug, Message: "resolving repository"},
		{TaskType: model.TaskTypeGeneration, TaskID: taskID, Level: model.LogLevelInfo, Message: "Cloning repository..."},
		{TaskType: model.TaskTypeGeneration, TaskID: taskID, Level: model.LogLevelWarn, Message: "upstream unreachable, using fallback"},
		{TaskType: model.TaskTypeGeneration, TaskID: taskID, Level: model.LogLevelError, Message: "export failed"},
	}
	require.NoError(t, s.BatchCreate(logs))
}

func TestTaskLogCreateAndGet(t *testing.T) {
	s, cleanup := SetupTestTaskLogDB(t)
	defer cleanup()

	entry := &model.TaskLog{
		TaskType: model.TaskTypeGeneration,
		TaskID:   "gen-001",
		Level:    model.LogLevelInfo,
		Message:  "Analyzing codebase...",
		Fields:   model.JSONMap{"step": float64(1)},
	}
	require.NoError(t, s.Create(entry))

	logs, err := s.GetByTaskID(model.TaskTypeGeneration, "gen-001")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Analyzing codebase...", logs[0].Message)
	assert.Equal(t, float64(1), logs[0].Fields["step"])
}

func TestTaskLogBatchCreateEmpty(t *testing.T) {
	s, cleanup := SetupTestTaskLogDB(t)
	defer cleanup()

	assert.NoError(t, s.BatchCreate(nil))
	assert.NoError(t, s.Write([]model.TaskLog{}))
}

func TestTaskLogLevelFiltering(t *testing.T) {
	s, cleanup := SetupTestTaskLogDB(t)
	defer cleanup()

	createTestLogs(t, s, "gen-002")

	warnOnly, err := s.GetByTaskIDWithLevel(model.TaskTypeGeneration, "gen-002", model.LogLevelWarn)
	require.NoError(t, err)
	require.Len(t, warnOnly, 1)
	assert.Equal(t, "upstream unreachable, using fallback", warnOnly[0].Message)

	warnAndAbove, err := s.GetByTaskIDWithLevelAndAbove(model.TaskTypeGeneration, "gen-002", model.LogLevelWarn)
	require.NoError(t, err)
	assert.Len(t, warnAndAbove, 2)
}

func TestTaskLogPagination(t *testing.T) {
	s, cleanup := SetupTestTaskLogDB(t)
	defer cleanup()

	createTestLogs(t, s, "gen-003")

	logs, total, err := s.GetByTaskIDWithPagination(model.TaskTypeGeneration, "gen-003", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, logs, 2)

	logs, total, err = s.GetByTaskIDWithPagination(model.TaskTypeGeneration, "gen-003", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, logs, 1)
}

func TestTaskLogGetLatest(t *testing.T) {
	s, cleanup := SetupTestTaskLogDB(t)
	defer cleanup()

	createTestLogs(t, s, "gen-004")

	logs, err := s.GetLatestByTaskID(model.TaskTypeGeneration, "gen-004", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Returned in chronological order
	assert.True(t, !logs[1].CreatedAt.Before(logs[0].CreatedAt))
}

func TestTaskLogDeleteByTaskID(t *testing.T) {
	s, cleanup := SetupTestTaskLogDB(t)
	defer cleanup()

	createTestLogs(t, s, "gen-005")
	createTestLogs(t, s, "gen-006")

	require.NoError(t, s.DeleteByTaskID(model.TaskTypeGeneration, "gen-005"))

	count, err := s.CountByTaskID(model.TaskTypeGeneration, "gen-005")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = s.CountByTaskID(model.TaskTypeGeneration, "gen-006")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestTaskLogDeleteOlderThan(t *testing.T) {
	s, cleanup := SetupTestTaskLogDB(t)
	defer cleanup()

	createTestLogs(t, s, "gen-007")

	// Fresh logs are inside the retention window.
	deleted, err := s.DeleteOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	count, err := s.CountByTaskID(model.TaskTypeGeneration, "gen-007")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
