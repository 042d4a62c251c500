package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

func initTestDB(t *testing.T) {
	t.Helper()

	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})

	ResetForTesting()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, InitWithPath(dbPath))
	t.Cleanup(func() {
		Close()
		ResetForTesting()
	})
}

func TestSQLiteOptimizations(t *testing.T) {
	initTestDB(t)

	db := Get()

	// Check journal_mode (should be WAL)
	var journalMode string
	result := db.Raw("PRAGMA journal_mode").Scan(&journalMode)
	require.NoError(t, result.Error)
	assert.Equal(t, "wal", journalMode)

	// Check synchronous (should be 1 for NORMAL)
	var synchronous int
	result = db.Raw("PRAGMA synchronous").Scan(&synchronous)
	require.NoError(t, result.Error)
	assert.Equal(t, 1, synchronous)

	// Check foreign_keys (should be ON)
	var foreignKeys int
	result = db.Raw("PRAGMA foreign_keys").Scan(&foreignKeys)
	require.NoError(t, result.Error)
	assert.Equal(t, 1, foreignKeys)
}

func TestMigrationCreatesGenerationTable(t *testing.T) {
	initTestDB(t)

	db := Get()

	gen := &model.Generation{
		ID:                 "cbva9k2p4g5g00example",
		Kind:               model.GenerationKindDocumentation,
		RepoURL:            "https://github.com/acme/widgets",
		TargetAudience:     "intermediate",
		Tone:               "professional",
		OutputFormat:       "readme",
		SelectedComponents: model.StringArray{"overview", "readme"},
		Status:             model.GenerationStatusPending,
	}
	require.NoError(t, db.Create(gen).Error)

	var loaded model.Generation
	require.NoError(t, db.First(&loaded, "id = ?", gen.ID).Error)
	assert.Equal(t, gen.RepoURL, loaded.RepoURL)
	assert.Equal(t, model.StringArray{"overview", "readme"}, loaded.SelectedComponents)
	assert.Equal(t, model.GenerationStatusPending, loaded.Status)
	assert.False(t, loaded.Degraded)
}

func TestTransaction(t *testing.T) {
	initTestDB(t)

	err := Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model.Generation{
			ID:      "cbva9k2p4g5g00txtest0",
			RepoURL: "https://github.com/acme/tx",
			Status:  model.GenerationStatusPending,
		}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, Get().Model(&model.Generation{}).Where("repo_url = ?", "https://github.com/acme/tx").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHealthCheck(t *testing.T) {
	initTestDB(t)
	assert.NoError(t, HealthCheck())
}

func TestTaskLogDB(t *testing.T) {
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})

	ResetTaskLogDBForTesting()
	assert.False(t, IsTaskLogDBInitialized())

	dbPath := filepath.Join(t.TempDir(), "task_logs.db")
	require.NoError(t, InitTaskLogDBWithPath(dbPath))
	t.Cleanup(func() {
		CloseTaskLogDB()
		ResetTaskLogDBForTesting()
	})

	assert.True(t, IsTaskLogDBInitialized())

	db := GetTaskLogDB()
	entry := &model.TaskLog{
		TaskType: model.TaskTypeGeneration,
		TaskID:   "cbva9k2p4g5g00example",
		Level:    model.LogLevelInfo,
		Message:  "Cloning repository...",
	}
	require.NoError(t, db.Create(entry).Error)

	var loaded model.TaskLog
	require.NoError(t, db.First(&loaded, "task_id = ?", "cbva9k2p4g5g00example").Error)
	assert.Equal(t, "Cloning repository...", loaded.Message)
}
