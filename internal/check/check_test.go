package check

import (
	"os"
	"path/filepath"
	"testing"
)

// TestNewChecker tests the NewChecker function
func TestNewChecker(t *testing.T) {
	checker := NewChecker()
	if checker == nil {
		t.Fatal("NewChecker returned nil")
	}
	if checker.configDir != "config" {
		t.Errorf("Expected configDir 'config', got '%s'", checker.configDir)
	}
	if checker.dataDir != "data" {
		t.Errorf("Expected dataDir 'data', got '%s'", checker.dataDir)
	}
	if checker.report == nil {
		t.Error("Report should be initialized")
	}
}

// TestRequiredFiles tests the RequiredFiles method
func TestRequiredFiles(t *testing.T) {
	checker := NewChecker()
	files := checker.RequiredFiles()

	if len(files) != 1 {
		t.Errorf("Expected 1 required file, got %d", len(files))
	}

	if files[0].Path != filepath.Join("config", "gitdocai.yaml") {
		t.Errorf("First file should be config/gitdocai.yaml, got %s", files[0].Path)
	}
}

// TestFileExists tests the fileExists function
func TestFileExists(t *testing.T) {
	// Test with existing file
	tmpFile := filepath.Join(t.TempDir(), "test_exists.txt")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if !fileExists(tmpFile) {
		t.Error("fileExists should return true for existing file")
	}

	// Test with non-existing file
	if fileExists("/non/existent/file.txt") {
		t.Error("fileExists should return false for non-existing file")
	}
}

// TestEnsureDir tests the ensureDir function
func TestEnsureDir(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "subdir")

	testFile := filepath.Join(tmpDir, "test.txt")
	if err := ensureDir(testFile); err != nil {
		t.Errorf("ensureDir failed: %v", err)
	}

	// Check directory was created
	if _, err := os.Stat(tmpDir); os.IsNotExist(err) {
		t.Error("Directory should have been created")
	}
}

// TestRunNonInteractive_MissingConfig tests the non-interactive check with
// no configuration file present
func TestRunNonInteractive_MissingConfig(t *testing.T) {
	checker := NewChecker()
	checker.configDir = filepath.Join(t.TempDir(), "config")

	result := checker.RunNonInteractive()

	// A missing config is not fatal, the server uses defaults
	if !result.Success {
		t.Errorf("RunNonInteractive should succeed with missing config, errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a warning about the missing config file")
	}
	if len(result.Suggestions) == 0 {
		t.Error("Expected a suggestion to run the interactive check")
	}
}

// TestRunNonInteractive_InvalidConfig tests the non-interactive check with
// a malformed configuration file
func TestRunNonInteractive_InvalidConfig(t *testing.T) {
	configDir := t.TempDir()
	checker := NewChecker()
	checker.configDir = configDir

	path := filepath.Join(configDir, "gitdocai.yaml")
	if err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	result := checker.RunNonInteractive()

	if result.Success {
		t.Error("RunNonInteractive should fail with invalid config")
	}
	if len(result.Errors) == 0 {
		t.Error("Expected an error about the invalid config file")
	}
}

// TestRunNonInteractive_ValidConfig tests the non-interactive check with a
// valid configuration file
func TestRunNonInteractive_ValidConfig(t *testing.T) {
	configDir := t.TempDir()
	checker := NewChecker()
	checker.configDir = configDir

	path := filepath.Join(configDir, "gitdocai.yaml")
	content := "server:\n  host: localhost\n  port: 8080\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	result := checker.RunNonInteractive()

	if !result.Success {
		t.Errorf("RunNonInteractive should succeed, errors: %v", result.Errors)
	}
}
