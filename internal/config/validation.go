// Package config provides configuration management for the application.
// This file contains validation functions for configuration values.
package config

import (
	"fmt"
	"strings"

	"github.com/gitdocai/gitdocai/pkg/errors"
)

// Validate checks the configuration for values the server cannot start
// with. It returns the first problem found.
func (c *Config) Validate() *errors.AppError {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Upstream.BaseURL != "" &&
		!strings.HasPrefix(c.Upstream.BaseURL, "http://") &&
		!strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return errors.New(errors.ErrCodeConfigInvalid,
			"upstream.base_url must start with http:// or https://")
	}
	if c.Upstream.TimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "upstream.timeout_seconds cannot be negative")
	}

	if c.Generate.MaxConcurrent < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "generate.max_concurrent cannot be negative")
	}
	if c.Generate.QueueSize < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "generate.queue_size cannot be negative")
	}
	if c.Generate.RetentionDays < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "generate.retention_days cannot be negative")
	}

	if err := c.Notifications.validate(); err != nil {
		return err
	}

	return nil
}

// validate checks the notification channel and event selections.
func (c *NotificationConfig) validate() *errors.AppError {
	switch c.Channel {
	case NotificationChannelNone, NotificationChannelWebhook, NotificationChannelSlack:
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("notifications.channel %q is not supported (webhook, slack)", c.Channel))
	}

	for _, event := range c.Events {
		switch event {
		case NotificationEventGenerationFailed,
			NotificationEventGenerationCompleted,
			NotificationEventGenerationDegraded:
		default:
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("notifications.events entry %q is not supported", event))
		}
	}

	if c.Channel == NotificationChannelWebhook && strings.TrimSpace(c.Webhook.URL) == "" {
		return errors.New(errors.ErrCodeConfigInvalid,
			"notifications.webhook.url is required when channel is webhook")
	}
	if c.Channel == NotificationChannelSlack && strings.TrimSpace(c.Slack.WebhookURL) == "" {
		return errors.New(errors.ErrCodeConfigInvalid,
			"notifications.slack.webhook_url is required when channel is slack")
	}

	return nil
}
