package otelhelper_test

import (
	"errors"
	"testing"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/otelhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := otelhelper.StartSpan(t.Context(), tracer, "compile", attribute.String(otelhelper.WorkflowNameKey, "campaign"))
	otelhelper.SetDiagnostics(span, models.Diagnostics{{Severity: models.SeverityError}})
	otelhelper.SetError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	assert.Equal(t, "compile", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Bool(otelhelper.BlockingKey, true))
	assert.Contains(t, spans[0].Attributes(), attribute.Int(otelhelper.DiagnosticsKey, 1))
	assert.Contains(t, spans[0].Attributes(), attribute.String(otelhelper.WorkflowNameKey, "campaign"))
}

func TestNoopTracer(t *testing.T) {
	_, span := otelhelper.StartSpan(t.Context(), otelhelper.NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.IsRecording())
}
