// Package notification provides notification services for generation events.
// It supports Webhook and Slack notification channels.
package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/config"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// EventType represents the type of notification event
type EventType string

const (
	// EventGenerationFailed is triggered when a generation task fails
	EventGenerationFailed EventType = "generation_failed"
	// EventGenerationCompleted is triggered when a generation task completes successfully
	EventGenerationCompleted EventType = "generation_completed"
	// EventGenerationDegraded is triggered when a generation was served by the
	// local fallback generator instead of the upstream service
	EventGenerationDegraded EventType = "generation_degraded"
)

// Event represents a notification event with context information
type Event struct {
	// Type is the event type
	Type EventType `json:"type"`
	// TaskID is the unique identifier of the generation
	TaskID string `json:"task_id"`
	// TaskType is always "generation"
	TaskType string `json:"task_type"`
	// RepoURL is the repository URL associated with the task
	RepoURL string `json:"repo_url"`
	// ErrorMessage is the error that caused the failure
	ErrorMessage string `json:"error_message"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// Extra contains additional context-specific information
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Notifier is the interface that all notification channels must implement
type Notifier interface {
	// Name returns the name of the notifier (e.g., "webhook", "slack")
	Name() string
	// Send sends a notification for the given event
	// Returns an error if the notification fails to send
	Send(ctx context.Context, event *Event) error
}

// Manager manages the configured notification channel and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	cfg      *config.NotificationConfig
	notifier Notifier
}

// globalManager is the singleton manager instance
var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager creates a new notification manager from static configuration.
func NewManager(cfg *config.NotificationConfig) *Manager {
	m := &Manager{cfg: cfg}
	m.initNotifier()
	return m
}

// Init initializes the global notification manager.
func Init(cfg *config.NotificationConfig) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
		if globalManager.notifier != nil {
			logger.Info("Notification manager initialized",
				zap.String("channel", string(cfg.Channel)),
				zap.Int("events_count", len(cfg.Events)),
			)
		} else {
			logger.Info("Notification manager initialized (disabled)")
		}
	})
}

// GetManager returns the global notification manager
func GetManager() *Manager {
	return globalManager
}

// ResetForTesting resets the global notification manager for testing purposes.
// This should only be used in tests to allow re-initialization with different configurations.
func ResetForTesting(cfg *config.NotificationConfig) {
	globalManager = NewManager(cfg)
}

// initNotifier initializes the appropriate notifier for the configured channel.
func (m *Manager) initNotifier() {
	if m.cfg == nil || !m.cfg.IsEnabled() {
		return
	}

	switch m.cfg.Channel {
	case config.NotificationChannelWebhook:
		m.notifier = NewWebhookNotifier(&m.cfg.Webhook)
	case config.NotificationChannelSlack:
		m.notifier = NewSlackNotifier(&m.cfg.Slack)
	default:
		logger.Warn("Unknown notification channel",
			zap.String("channel", string(m.cfg.Channel)),
		)
	}
}

// Notify sends a notification for the given event.
// It checks if the event type is enabled before sending.
func (m *Manager) Notify(ctx context.Context, event *Event) error {
	m.mu.RLock()
	cfg := m.cfg
	notifier := m.notifier
	m.mu.RUnlock()

	// Check if notifications are enabled
	if cfg == nil || !cfg.IsEnabled() {
		logger.Debug("Notifications disabled, skipping",
			zap.String("event_type", string(event.Type)),
		)
		return nil
	}

	// Check if this event type is enabled
	if !cfg.HasEvent(config.NotificationEvent(event.Type)) {
		logger.Debug("Event type not in notification list, skipping",
			zap.String("event_type", string(event.Type)),
		)
		return nil
	}

	if notifier == nil {
		logger.Warn("No notifier configured")
		return fmt.Errorf("no notifier configured for channel: %s", cfg.Channel)
	}

	logger.Info("Sending notification",
		zap.String("channel", notifier.Name()),
		zap.String("event_type", string(event.Type)),
		zap.String("task_id", event.TaskID),
	)

	if err := notifier.Send(ctx, event); err != nil {
		logger.Error("Failed to send notification",
			zap.String("channel", notifier.Name()),
			zap.String("event_type", string(event.Type)),
			zap.String("task_id", event.TaskID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send notification via %s: %w", notifier.Name(), err)
	}

	logger.Info("Notification sent successfully",
		zap.String("channel", notifier.Name()),
		zap.String("task_id", event.TaskID),
	)

	return nil
}

// NotifyGenerationFailed is a convenience function to notify about generation failures
func NotifyGenerationFailed(ctx context.Context, generationID, repoURL, errorMsg string, extra map[string]interface{}) error {
	if globalManager == nil {
		return nil
	}

	event := &Event{
		Type:         EventGenerationFailed,
		TaskID:       generationID,
		TaskType:     "generation",
		RepoURL:      repoURL,
		ErrorMessage: errorMsg,
		Timestamp:    time.Now(),
		Extra:        extra,
	}

	return globalManager.Notify(ctx, event)
}

// NotifyGenerationCompleted is a convenience function to notify about generation completion
func NotifyGenerationCompleted(ctx context.Context, generationID, repoURL string, extra map[string]interface{}) error {
	if globalManager == nil {
		return nil
	}

	event := &Event{
		Type:      EventGenerationCompleted,
		TaskID:    generationID,
		TaskType:  "generation",
		RepoURL:   repoURL,
		Timestamp: time.Now(),
		Extra:     extra,
	}

	return globalManager.Notify(ctx, event)
}

// NotifyGenerationDegraded is a convenience function to notify that a generation
// was served by the mock fallback.
func NotifyGenerationDegraded(ctx context.Context, generationID, repoURL, reason string, extra map[string]interface{}) error {
	if globalManager == nil {
		return nil
	}

	event := &Event{
		Type:         EventGenerationDegraded,
		TaskID:       generationID,
		TaskType:     "generation",
		RepoURL:      repoURL,
		ErrorMessage: reason,
		Timestamp:    time.Now(),
		Extra:        extra,
	}

	return globalManager.Notify(ctx, event)
}

// IsEnabled returns true if notifications are enabled.
func (m *Manager) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg != nil && m.cfg.IsEnabled()
}

// GetChannel returns the configured notification channel.
func (m *Manager) GetChannel() config.NotificationChannel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg == nil {
		return config.NotificationChannelNone
	}
	return m.cfg.Channel
}
