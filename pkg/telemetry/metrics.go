// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/pkg/logger"
)

const (
	// MeterName is the default meter name for the application
	MeterName = "github.com/gitdocai/gitdocai"
)

// Metrics holds all application metrics
type Metrics struct {
	// Generation metrics
	GenerationsTotal    metric.Int64Counter
	GenerationDuration  metric.Float64Histogram
	ActiveGenerations   metric.Int64UpDownCounter
	GenerationsByStatus metric.Int64Counter
	FallbacksTotal      metric.Int64Counter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Upstream client metrics
	UpstreamRequestsTotal metric.Int64Counter
	UpstreamRequestErrors metric.Int64Counter

	// Export metrics
	ExportsTotal   metric.Int64Counter
	ExportDuration metric.Float64Histogram
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			// Return empty metrics to avoid nil pointer
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

// initMetrics initializes all application metrics
func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}

	var err error

	// Generation metrics
	m.GenerationsTotal, err = meter.Int64Counter(
		"gitdocai_generations_total",
		metric.WithDescription("Total number of documentation generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationDuration, err = meter.Float64Histogram(
		"gitdocai_generation_duration_seconds",
		metric.WithDescription("Duration of documentation generations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, err
	}

	m.ActiveGenerations, err = meter.Int64UpDownCounter(
		"gitdocai_active_generations",
		metric.WithDescription("Number of currently active generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationsByStatus, err = meter.Int64Counter(
		"gitdocai_generations_by_status_total",
		metric.WithDescription("Total number of generations by terminal status"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	m.FallbacksTotal, err = meter.Int64Counter(
		"gitdocai_fallbacks_total",
		metric.WithDescription("Total number of generations served by the local fallback generator"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"gitdocai_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"gitdocai_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	// Upstream client metrics
	m.UpstreamRequestsTotal, err = meter.Int64Counter(
		"gitdocai_upstream_requests_total",
		metric.WithDescription("Total number of upstream generation service requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.UpstreamRequestErrors, err = meter.Int64Counter(
		"gitdocai_upstream_request_errors_total",
		metric.WithDescription("Total number of upstream generation service transport errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	// Export metrics
	m.ExportsTotal, err = meter.Int64Counter(
		"gitdocai_exports_total",
		metric.WithDescription("Total number of document exports"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, err
	}

	m.ExportDuration, err = meter.Float64Histogram(
		"gitdocai_export_duration_seconds",
		metric.WithDescription("Duration of document exports in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("Metrics initialized successfully")
	return m, nil
}

// RecordGenerationStarted records that a generation has started
func (m *Metrics) RecordGenerationStarted(ctx context.Context, kind string) {
	if m.GenerationsTotal == nil {
		return
	}
	m.GenerationsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
	if m.ActiveGenerations != nil {
		m.ActiveGenerations.Add(ctx, 1)
	}
}

// RecordGenerationCompleted records that a generation reached a terminal state
func (m *Metrics) RecordGenerationCompleted(ctx context.Context, status string, durationSeconds float64) {
	if m.ActiveGenerations != nil {
		m.ActiveGenerations.Add(ctx, -1)
	}
	if m.GenerationsByStatus != nil {
		m.GenerationsByStatus.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
	if m.GenerationDuration != nil {
		m.GenerationDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
}

// RecordFallback records that a generation was served by the local fallback generator
func (m *Metrics) RecordFallback(ctx context.Context, reason string) {
	if m.FallbacksTotal == nil {
		return
	}
	m.FallbacksTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}

// RecordUpstreamRequest records an upstream generation service request
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, success bool) {
	if m.UpstreamRequestsTotal != nil {
		m.UpstreamRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.Bool("success", success)),
		)
	}
	if !success && m.UpstreamRequestErrors != nil {
		m.UpstreamRequestErrors.Add(ctx, 1)
	}
}

// RecordExport records a document export
func (m *Metrics) RecordExport(ctx context.Context, format string, success bool, durationSeconds float64) {
	if m.ExportsTotal != nil {
		m.ExportsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("format", format),
				attribute.Bool("success", success),
			),
		)
	}
	if m.ExportDuration != nil {
		m.ExportDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(attribute.String("format", format)),
		)
	}
}
