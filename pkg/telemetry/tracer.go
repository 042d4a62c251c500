// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the default tracer name for the application
	TracerName = "github.com/gitdocai/gitdocai"
)

// Tracer returns the global tracer for the application
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a new span with the given name and returns the context and span.
// The caller is responsible for calling span.End() when the operation is complete.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from the context.
// If no span is found, a no-op span is returned.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanError records an error on the span and sets its status to error
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK sets the span status to OK
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanAttributes sets attributes on the span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// Common attribute keys for consistent naming
var (
	// Repository attributes
	AttrRepoURL   = attribute.Key("repo.url")
	AttrRepoOwner = attribute.Key("repo.owner")
	AttrRepoName  = attribute.Key("repo.name")

	// Generation attributes
	AttrGenerationID     = attribute.Key("generation.id")
	AttrGenerationKind   = attribute.Key("generation.kind")
	AttrGenerationStatus = attribute.Key("generation.status")
	AttrTutorialType     = attribute.Key("generation.tutorial_type")
	AttrDegraded         = attribute.Key("generation.degraded")

	// Export attributes
	AttrExportFormat = attribute.Key("export.format")

	// Result attributes
	AttrDocumentBytes = attribute.Key("document.bytes")
	AttrDurationMs    = attribute.Key("duration.ms")
)

// WithGenerationAttributes returns span start options with generation attributes
func WithGenerationAttributes(generationID, repoURL string, kind string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrGenerationID.String(generationID),
		AttrRepoURL.String(repoURL),
		AttrGenerationKind.String(kind),
	)
}

// WithExportAttributes returns span start options with export attributes
func WithExportAttributes(generationID, format string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrGenerationID.String(generationID),
		AttrExportFormat.String(format),
	)
}
