// Package main is the entry point for the GitDocAI application.
// GitDocAI is a documentation generation service for Git repositories.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/consts"
	"github.com/gitdocai/gitdocai/internal/check"
	"github.com/gitdocai/gitdocai/internal/config"
	"github.com/gitdocai/gitdocai/internal/database"
	"github.com/gitdocai/gitdocai/internal/engine"
	"github.com/gitdocai/gitdocai/internal/export"
	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/internal/gitrepo"
	"github.com/gitdocai/gitdocai/internal/notification"
	"github.com/gitdocai/gitdocai/internal/server"
	"github.com/gitdocai/gitdocai/internal/store"
	"github.com/gitdocai/gitdocai/pkg/logger"
	"github.com/gitdocai/gitdocai/pkg/telemetry"
)

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// configPath holds the path to the configuration file
var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gitdocai",
	Short: "GitDocAI - AI-Powered Documentation Generation Service",
	Long: `GitDocAI generates READMEs, API references, and tutorials for Git
repositories through an AI generation backend, with a deterministic
fallback when the backend is unreachable.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GitDocAI server",
	Long: `Start the HTTP server to handle documentation generation requests.

On first run, use --check flag to interactively set up your environment:
  gitdocai serve --check

This will guide you through:
  - Creating the configuration file from a template
  - Validating configuration formats and export tooling

After initial setup, simply run:
  gitdocai serve`,
	Run: runServe,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("GitDocAI %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: config/gitdocai.yaml)")

	// Add commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// Serve command flags
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
	serveCmd.Flags().Bool("check", false, "run interactive environment check before starting server")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the GitDocAI server
func runServe(cmd *cobra.Command, args []string) {
	// Check if interactive check is enabled via --check flag
	interactiveCheck, _ := cmd.Flags().GetBool("check")

	if interactiveCheck {
		// Run full interactive environment check
		checker := check.NewChecker()
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ Environment check completed successfully")
	} else {
		// Run non-interactive basic check
		checker := check.NewChecker()
		result := checker.RunNonInteractive()

		if !result.Success {
			// Print errors and exit
			check.PrintCheckResult(result)
			os.Exit(1)
		}

		// Print warnings if any (but don't block startup)
		if len(result.Warnings) > 0 {
			for _, warn := range result.Warnings {
				fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
			}
			fmt.Fprintln(os.Stderr)
		}
	}

	// Record server start time
	consts.SetStartedAt(time.Now())

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize task log database (separate from main database)
	var taskLogCleanupService *store.TaskLogCleanupService
	if err := database.InitTaskLogDB(); err != nil {
		fmt.Fprintf(os.Stderr, "[WARNING] Failed to initialize task log database: %v\n", err)
		// Continue without task logging - not fatal
	} else {
		defer database.CloseTaskLogDB()

		// Create TaskLogStore and set up the logger hook for dual-write mode
		taskLogStore := store.NewTaskLogStore(database.GetTaskLogDB())
		logger.SetTaskLogHook(taskLogStore)
		defer logger.CloseTaskLogHook()

		// Start task log cleanup service (runs daily at 2 AM)
		taskLogCleanupService = store.NewTaskLogCleanupService(taskLogStore, store.DefaultTaskLogRetentionDays)
		if err := taskLogCleanupService.Start(); err != nil {
			logger.Warn("Failed to start task log cleanup service", zap.Error(err))
			// Continue without cleanup - not fatal
		} else {
			defer taskLogCleanupService.Stop()
		}
	}

	logger.Info("Starting GitDocAI",
		zap.String("version", Version),
	)

	// Initialize telemetry (OpenTelemetry traces and metrics)
	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	// Initialize the main database
	if err := database.Init(); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Create store instance for dependency injection
	dataStore := store.NewStore(database.Get())

	// Initialize notification manager
	notification.Init(&cfg.Notifications)

	// Start generation retention cleanup (runs daily at 3 AM)
	generationCleanup := store.NewGenerationCleanupService(dataStore.Generation(), cfg.Generate.RetentionDays)
	if err := generationCleanup.Start(); err != nil {
		logger.Warn("Failed to start generation cleanup service", zap.Error(err))
	} else {
		defer generationCleanup.Stop()
	}

	// Create the upstream client and generation engine. The repository
	// analyzer enriches degraded results with real repository metadata.
	client := generate.NewClient(generate.ClientConfig{
		BaseURL:       cfg.Upstream.BaseURL,
		Timeout:       cfg.Upstream.Timeout(),
		HealthTimeout: cfg.Upstream.HealthTimeout(),
		Analyzer:      gitrepo.NewAnalyzer(gitrepo.Config{Token: cfg.GitHub.Token}),
	})

	generationEngine := engine.NewEngine(cfg, dataStore, client)
	generationEngine.Start()
	defer generationEngine.Stop()

	// Exporters for download endpoints. The PDF exporter picks up the
	// configured Chrome binary and timeout.
	pdfOpts := export.DefaultPDFOptions()
	pdfOpts.ChromePath = cfg.Export.ChromePath
	pdfOpts.Timeout = cfg.Export.PDFTimeout()

	exports := export.NewEmptyManager()
	exports.Register(export.FormatMarkdown, export.NewMarkdownExporter())
	exports.Register(export.FormatHTML, export.NewHTMLExporter())
	exports.Register(export.FormatPDF, export.NewPDFExporterWithOptions(pdfOpts))

	// Create and configure server
	srv := server.New(cfg, generationEngine, dataStore, client, exports)
	srv.SetupRoutes()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("GitDocAI server is running",
		zap.String("address", cfg.Server.Address()),
	)

	// Log access URLs for user convenience
	port := cfg.Server.Port
	logger.Info(fmt.Sprintf("  Local:   http://localhost:%d/health", port))
	if lanIP := getLocalIP(); lanIP != "" {
		logger.Info(fmt.Sprintf("  Network: http://%s:%d/health", lanIP, port))
	}

	// Wait for shutdown
	srv.WaitForShutdown()

	logger.Info("GitDocAI stopped")
}

// loadConfig loads configuration from the YAML file, falling back to
// built-in defaults when no file exists.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// getLocalIP returns the first non-loopback IPv4 address
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
