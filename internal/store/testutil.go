// Package store provides test utilities for database testing.
package store

import (
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/gitdocai/gitdocai/internal/database"
	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/pkg/idgen"
)

// SetupTestDB creates a file-backed SQLite database for testing.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	// Reset database state to allow re-initialization
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database with temp path
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()
	store := NewStore(db)

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return store, cleanup
}

// SetupTestTaskLogDB creates a file-backed SQLite database for task log testing.
// It returns a TaskLogStore and a cleanup function.
func SetupTestTaskLogDB(t *testing.T) (TaskLogStore, func()) {
	database.ResetTaskLogDBForTesting()

	tmpFile, err := os.CreateTemp("", "test_task_logs_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := database.InitTaskLogDBWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test task log database: %v", err)
	}

	store := NewTaskLogStore(database.GetTaskLogDB())

	cleanup := func() {
		database.CloseTaskLogDB()
		database.ResetTaskLogDBForTesting()
		os.Remove(tmpPath)
	}

	return store, cleanup
}

// SetupTestDBWithModels creates a file-backed SQLite database and runs migrations.
// This is a convenience function that ensures all models are migrated.
func SetupTestDBWithModels(t *testing.T) (*gorm.DB, func()) {
	// Reset database state
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()

	// Ensure all models are migrated
	models := model.AllModels()
	if err := db.AutoMigrate(models...); err != nil {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
		t.Fatalf("Failed to migrate models: %v", err)
	}

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return db, cleanup
}

// CreateTestGeneration creates a test Generation with default values.
// Fields can be overridden by passing a function that modifies the generation.
func CreateTestGeneration(t *testing.T, store Store, overrides ...func(*model.Generation)) *model.Generation {
	gen := &model.Generation{
		ID:                 idgen.NewGenerationID(),
		Kind:               model.GenerationKindDocumentation,
		RepoURL:            fmt.Sprintf("https://github.com/test/repo-%s", time.Now().Format("150405.000000")),
		TargetAudience:     "intermediate",
		Tone:               "professional",
		OutputFormat:       "readme",
		SelectedComponents: model.StringArray{"overview", "readme", "installation"},
		Status:             model.GenerationStatusPending,
	}

	// Apply overrides
	for _, override := range overrides {
		override(gen)
	}

	if err := store.Generation().Create(gen); err != nil {
		t.Fatalf("Failed to create test generation: %v", err)
	}

	return gen
}
