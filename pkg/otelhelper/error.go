package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/stateflow/pkg/models"
)

func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}

// SetDiagnostics records the diagnostic count and whether any of them blocks submission.
func SetDiagnostics(span trace.Span, diagnostics models.Diagnostics) {
	span.SetAttributes(
		attribute.Int(DiagnosticsKey, len(diagnostics)),
		attribute.Bool(BlockingKey, diagnostics.Blocking()),
	)
}
