// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gitdocai/gitdocai/consts"
	"github.com/gitdocai/gitdocai/pkg/logger"
	"github.com/gitdocai/gitdocai/pkg/telemetry"
)

// DefaultConfigPath is the default location of the configuration file
const DefaultConfigPath = "config/gitdocai.yaml"

// Default configuration values
const (
	defaultServerPort           = 8080
	defaultUpstreamTimeout      = 120
	defaultHealthTimeout        = 5
	defaultMaxConcurrent        = 3
	defaultQueueSize            = 100
	defaultStepIntervalMs       = 1000
	defaultLingerSeconds        = 2
	defaultRetentionDays        = 90
	defaultPDFTimeoutSeconds    = 120
	defaultOTLPEndpoint         = "localhost:4317"
	defaultPrometheusPort       = 9090
	defaultTaskLogRetentionDays = 7
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Upstream      UpstreamConfig     `yaml:"upstream"`
	Generate      GenerateConfig     `yaml:"generate"`
	Export        ExportConfig       `yaml:"export"`
	GitHub        GitHubConfig       `yaml:"github"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       logger.Config      `yaml:"logging"`
	Telemetry     telemetry.Config   `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
	// PublicURL is the externally reachable base URL, used to build the
	// canonical page URLs returned by the share endpoint. Empty falls
	// back to http://<host>:<port>.
	PublicURL string `yaml:"public_url"`
}

// DatabaseConfig holds database configuration
// Note: Database path is hardcoded in the database package to prevent data loss from configuration errors
type DatabaseConfig struct {
	// Reserved for future database configuration options
}

// UpstreamConfig holds the upstream generation API configuration
type UpstreamConfig struct {
	// BaseURL of the generation API. Empty uses the built-in default
	// (http://localhost:8000/api/v1).
	BaseURL string `yaml:"base_url"`
	// TimeoutSeconds for a single generation call (default: 120)
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// HealthTimeoutSeconds for the advisory health probe (default: 5)
	HealthTimeoutSeconds int `yaml:"health_timeout_seconds"`
}

// GenerateConfig holds generation lifecycle configuration
type GenerateConfig struct {
	// MaxConcurrent generation workers (default: 3)
	MaxConcurrent int `yaml:"max_concurrent"`
	// QueueSize of the pending task queue (default: 100)
	QueueSize int `yaml:"queue_size"`
	// StepIntervalMs is the progress phase cadence in milliseconds (default: 1000)
	StepIntervalMs int `yaml:"step_interval_ms"`
	// LingerSeconds keeps the terminal progress visible before it
	// resets (default: 2)
	LingerSeconds int `yaml:"linger_seconds"`
	// RetentionDays before completed generations are purged (default: 90)
	RetentionDays int `yaml:"retention_days"`
}

// ExportConfig holds export configuration
type ExportConfig struct {
	// ChromePath overrides the Chrome binary used for PDF export.
	// Empty lets chromedp resolve it.
	ChromePath string `yaml:"chrome_path"`
	// PDFTimeoutSeconds bounds a PDF export (default: 120)
	PDFTimeoutSeconds int `yaml:"pdf_timeout_seconds"`
}

// GitHubConfig holds repository analyzer configuration
type GitHubConfig struct {
	// Token is an optional access token for the GitHub API. Empty means
	// anonymous access to public repositories.
	Token string `yaml:"token"`
}

// NotificationChannel represents the type of notification channel
type NotificationChannel string

const (
	NotificationChannelNone    NotificationChannel = ""        // Disabled
	NotificationChannelWebhook NotificationChannel = "webhook" // Generic webhook
	NotificationChannelSlack   NotificationChannel = "slack"   // Slack webhook
)

// NotificationEvent represents the type of event to notify
type NotificationEvent string

const (
	NotificationEventGenerationFailed    NotificationEvent = "generation_failed"    // Generation task failed
	NotificationEventGenerationCompleted NotificationEvent = "generation_completed" // Generation task completed
	NotificationEventGenerationDegraded  NotificationEvent = "generation_degraded"  // Generation served by the mock fallback
)

// NotificationConfig holds notification configuration
type NotificationConfig struct {
	// Channel specifies the notification channel type (single choice).
	// Empty string means notifications are disabled.
	Channel NotificationChannel `yaml:"channel"`

	// Events specifies which events trigger notifications
	Events []NotificationEvent `yaml:"events"`

	// Webhook configuration (used when channel is "webhook")
	Webhook WebhookNotificationConfig `yaml:"webhook"`

	// Slack configuration (used when channel is "slack")
	Slack SlackNotificationConfig `yaml:"slack"`
}

// WebhookNotificationConfig holds webhook notification settings
type WebhookNotificationConfig struct {
	// URL is the webhook endpoint URL
	URL string `yaml:"url"`
	// Secret is optional, used for HMAC signature verification
	Secret string `yaml:"secret"`
}

// SlackNotificationConfig holds Slack notification settings
type SlackNotificationConfig struct {
	// WebhookURL is the Slack incoming webhook URL
	WebhookURL string `yaml:"webhook_url"`
	// Channel is optional, overrides the default channel configured in webhook
	Channel string `yaml:"channel"`
}

// IsEnabled returns true if notifications are enabled
func (c *NotificationConfig) IsEnabled() bool {
	return c.Channel != "" && c.Channel != NotificationChannelNone
}

// HasEvent returns true if the specified event is in the events list
func (c *NotificationConfig) HasEvent(event NotificationEvent) bool {
	for _, e := range c.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  "0.0.0.0",
			Port:  defaultServerPort,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:8080",
			},
		},
		Database: DatabaseConfig{},
		Upstream: UpstreamConfig{
			BaseURL:              consts.DefaultUpstreamBaseURL,
			TimeoutSeconds:       defaultUpstreamTimeout,
			HealthTimeoutSeconds: defaultHealthTimeout,
		},
		Generate: GenerateConfig{
			MaxConcurrent:  defaultMaxConcurrent,
			QueueSize:      defaultQueueSize,
			StepIntervalMs: defaultStepIntervalMs,
			LingerSeconds:  defaultLingerSeconds,
			RetentionDays:  defaultRetentionDays,
		},
		Export: ExportConfig{
			PDFTimeoutSeconds: defaultPDFTimeoutSeconds,
		},
		GitHub: GitHubConfig{},
		Notifications: NotificationConfig{
			Channel: NotificationChannelNone,
			Events:  []NotificationEvent{},
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable
// expansion, then applies GITDOCAI_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadOrDefault loads configuration from a file, falling back to the
// defaults (plus environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(path)
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid clobbering literal
// dollar signs in configured values.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}
		if len(parts) > 1 {
			return parts[1]
		}
		return ""
	})
}

// applyEnvOverrides applies GITDOCAI_* environment variables on top of
// the loaded configuration. Env reads happen here only; the rest of the
// codebase receives injected config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITDOCAI_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GITDOCAI_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GITDOCAI_SERVER_DEBUG"); v != "" {
		cfg.Server.Debug = parseBool(v)
	}
	if v := os.Getenv("GITDOCAI_PUBLIC_URL"); v != "" {
		cfg.Server.PublicURL = v
	}
	if v := os.Getenv("GITDOCAI_UPSTREAM_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("GITDOCAI_GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITDOCAI_CHROME_PATH"); v != "" {
		cfg.Export.ChromePath = v
	}
	if v := os.Getenv("GITDOCAI_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GITDOCAI_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("GITDOCAI_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

// parseBool parses common boolean spellings.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// BasePublicURL returns the externally reachable base URL without a
// trailing slash.
func (c *ServerConfig) BasePublicURL() string {
	if c.PublicURL != "" {
		return strings.TrimSuffix(c.PublicURL, "/")
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + host + ":" + strconv.Itoa(c.Port)
}

// Timeout returns the upstream call timeout as a duration.
func (c *UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HealthTimeout returns the health probe timeout as a duration.
func (c *UpstreamConfig) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutSeconds) * time.Second
}

// StepInterval returns the progress phase cadence as a duration.
func (c *GenerateConfig) StepInterval() time.Duration {
	return time.Duration(c.StepIntervalMs) * time.Millisecond
}

// Linger returns the terminal progress linger delay as a duration.
func (c *GenerateConfig) Linger() time.Duration {
	return time.Duration(c.LingerSeconds) * time.Second
}

// PDFTimeout returns the PDF export timeout as a duration.
func (c *ExportConfig) PDFTimeout() time.Duration {
	return time.Duration(c.PDFTimeoutSeconds) * time.Second
}
