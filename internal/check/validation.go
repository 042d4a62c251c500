package check

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/gitdocai/gitdocai/internal/config"
)

// ValidationResult represents the result of a config validation
type ValidationResult struct {
	Path     string
	Valid    bool
	Error    error
	Warnings []string
}

// ToolCheckResult represents the result of an external tool availability check
type ToolCheckResult struct {
	Name      string
	Available bool
	Path      string
	Error     error
}

// validateConfigs validates the configuration file and export tooling
func (c *Checker) validateConfigs() error {
	// Validate gitdocai.yaml
	configResult := c.validateConfigYaml()
	c.report.AddValidationResult(configResult)
	printValidationResult(configResult)

	if !configResult.Valid {
		return fmt.Errorf("%s validation failed: %w", c.ConfigPath(), configResult.Error)
	}

	// Check Chrome availability for PDF export. Missing Chrome is a
	// warning, not an error: markdown and HTML export still work.
	cfg, err := config.LoadOrDefault(c.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	chrome := checkChrome(cfg.Export.ChromePath)
	printToolResult(chrome)

	return nil
}

// validateConfigYaml validates the main configuration file
func (c *Checker) validateConfigYaml() ValidationResult {
	path := c.ConfigPath()
	result := ValidationResult{Path: path}

	// A missing config file falls back to built-in defaults
	if !fileExists(path) {
		result.Valid = true
		result.Warnings = append(result.Warnings, "file does not exist, using built-in defaults")
		return result
	}

	// Try to load the config
	cfg, err := config.Load(path)
	if err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("format error: %v", err)
		return result
	}

	result.Valid = true

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		result.Valid = false
		result.Error = fmt.Errorf("invalid server port: %d", cfg.Server.Port)
		return result
	}
	if cfg.Generate.MaxConcurrent <= 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("generate.max_concurrent is %d, a single worker will be used", cfg.Generate.MaxConcurrent))
	}
	if cfg.GitHub.Token == "" {
		result.Warnings = append(result.Warnings,
			"github.token not set, repository analysis uses anonymous access")
	}

	return result
}

// chromeCandidates are the binary names tried when no explicit Chrome
// path is configured, in preference order.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// checkChrome checks whether a Chrome binary usable for PDF export is
// available, either at the configured path or on PATH.
func checkChrome(configuredPath string) ToolCheckResult {
	result := ToolCheckResult{Name: "chrome"}

	if configuredPath != "" {
		if _, err := os.Stat(configuredPath); err != nil {
			result.Error = fmt.Errorf("configured chrome_path not found: %s", configuredPath)
			return result
		}
		result.Available = true
		result.Path = configuredPath
		return result
	}

	for _, candidate := range chromeCandidates {
		if resolved, err := exec.LookPath(candidate); err == nil {
			result.Available = true
			result.Path = resolved
			return result
		}
	}

	result.Error = fmt.Errorf("no Chrome binary found on PATH (tried: %v)", chromeCandidates)
	return result
}

// validateYamlSyntax validates YAML syntax
func validateYamlSyntax(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}

	var content interface{}
	if err := yaml.Unmarshal(data, &content); err != nil {
		return fmt.Errorf("YAML syntax error: %w", err)
	}

	return nil
}

// printToolResult prints a tool availability result
func printToolResult(result ToolCheckResult) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	fmt.Println()
	fmt.Println("Export Tooling:")
	if result.Available {
		green.Printf("  ✓ %s (%s)\n", result.Name, result.Path)
	} else {
		yellow.Printf("  ⚠ %s: %v (PDF export unavailable)\n", result.Name, result.Error)
	}
}

// printValidationResult prints the validation result
func printValidationResult(result ValidationResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if result.Valid {
		green.Printf("  ✓ %s\n", result.Path)
	} else if result.Error != nil {
		red.Printf("  ✗ %s: %v\n", result.Path, result.Error)
	} else {
		yellow.Printf("  ⚠ %s\n", result.Path)
	}

	// Print warnings if any
	for _, warning := range result.Warnings {
		yellow.Printf("    └─ %s\n", warning)
	}
}
