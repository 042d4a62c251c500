// Package check provides interactive environment checking and initialization.
// It helps users set up their local GitDocAI configuration properly.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/gitdocai/gitdocai/internal/config"
)

// CheckResult represents the result of a non-interactive environment check
type CheckResult struct {
	// Success indicates whether all required checks passed
	Success bool
	// Errors contains critical errors that prevent server startup
	Errors []string
	// Warnings contains non-critical issues that don't block startup
	Warnings []string
	// Suggestions contains helpful tips for fixing issues
	Suggestions []string
}

// Checker handles environment checking and initialization
type Checker struct {
	// configDir is the base directory for configuration files
	configDir string
	// dataDir is the directory holding the SQLite databases
	dataDir string
	// report collects check results for final output
	report *Report
	// theme for consistent styling
	theme *huh.Theme
}

// NewChecker creates a new environment checker
func NewChecker() *Checker {
	return &Checker{
		configDir: "config",
		dataDir:   "data",
		report:    NewReport(),
		theme:     huh.ThemeCharm(),
	}
}

// Run executes the full environment check
func (c *Checker) Run() error {
	// Print header
	c.printHeader()

	// Step 1: Check and create configuration files
	fmt.Println()
	printSection("Checking configuration files")
	if err := c.checkFiles(); err != nil {
		return fmt.Errorf("file check failed: %w", err)
	}

	// Step 2: Check and create the data directory
	fmt.Println()
	printSection("Checking data directory")
	if err := c.checkDataDir(); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}

	// Step 3: Validate configuration and export tooling
	fmt.Println()
	printSection("Validating configuration")
	if err := c.validateConfigs(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Step 4: Print final report
	fmt.Println()
	c.report.Print()

	return nil
}

// printHeader prints the welcome header
func (c *Checker) printHeader() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Println(titleStyle.Render("🔍 GitDocAI Environment Check"))
}

// printSection prints a section header
func printSection(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	fmt.Println(style.Render(title + "..."))
}

// RequiredFiles returns the list of required configuration files
func (c *Checker) RequiredFiles() []FileConfig {
	return []FileConfig{
		{
			Path:        filepath.Join(c.configDir, "gitdocai.yaml"),
			Description: "Main configuration file (server, upstream, generation, export)",
			Template:    TemplateConfig,
		},
	}
}

// ConfigPath returns the path to the main config file
func (c *Checker) ConfigPath() string {
	return filepath.Join(c.configDir, "gitdocai.yaml")
}

// DataDir returns the path to the data directory
func (c *Checker) DataDir() string {
	return c.dataDir
}

// confirmCreate asks user to confirm file creation
func confirmCreate(path string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s from template?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir creates directory if it doesn't exist
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RunNonInteractive performs a non-interactive environment check.
// Unlike Run(), this method does not prompt for user input and does not create files.
// It returns a CheckResult with errors, warnings, and suggestions.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{
		Success:     true,
		Errors:      make([]string, 0),
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	// Step 1: Check if the configuration file exists. A missing config is
	// not fatal since the server falls back to built-in defaults.
	if !fileExists(c.ConfigPath()) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Configuration file not found: %s (using built-in defaults)", c.ConfigPath()))
		result.Suggestions = append(result.Suggestions,
			"Run 'gitdocai serve --check' to interactively create configuration files",
		)
	} else {
		// Step 2: Validate the configuration file format
		c.validateConfigsNonInteractive(result)
	}

	// Step 3: Check export tooling and credentials (warnings only)
	c.checkToolsNonInteractive(result)

	return result
}

// validateConfigsNonInteractive validates configuration file formats
func (c *Checker) validateConfigsNonInteractive(result *CheckResult) {
	configResult := c.validateConfigYaml()
	if !configResult.Valid {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Invalid %s: %v", c.ConfigPath(), configResult.Error))
	}
	result.Warnings = append(result.Warnings, configResult.Warnings...)
}

// checkToolsNonInteractive checks export tooling as warnings (not blocking errors)
func (c *Checker) checkToolsNonInteractive(result *CheckResult) {
	cfg, err := config.LoadOrDefault(c.ConfigPath())
	if err != nil {
		// Config already validated, this shouldn't fail
		return
	}

	chrome := checkChrome(cfg.Export.ChromePath)
	if !chrome.Available {
		result.Warnings = append(result.Warnings,
			"Chrome not found: PDF export will be unavailable (markdown and HTML still work)")
	}

	if cfg.GitHub.Token == "" {
		result.Warnings = append(result.Warnings,
			"GitHub token not set: repository analysis uses anonymous API access with lower rate limits")
	}
}

// PrintCheckResult prints the check result in a formatted way
func PrintCheckResult(result *CheckResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Print errors
	if len(result.Errors) > 0 {
		fmt.Println()
		red.Println("[ERROR] Environment check failed")
		fmt.Println()
		for _, err := range result.Errors {
			red.Printf("  ✗ %s\n", err)
		}
	}

	// Print warnings
	if len(result.Warnings) > 0 {
		fmt.Println()
		yellow.Println("[WARNING] Configuration warnings:")
		fmt.Println()
		for _, warn := range result.Warnings {
			yellow.Printf("  ⚠ %s\n", warn)
		}
	}

	// Print suggestions
	if len(result.Suggestions) > 0 {
		cyan.Println("\nTo fix these issues:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  → %s\n", suggestion)
		}
	}

	fmt.Println()
}
