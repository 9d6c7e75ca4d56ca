package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_NoEndpoint(t *testing.T) {
	tp, shutdown, err := Setup("todo-api", "")
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := Tracer("test").Start(context.Background(), "noop")
	span.End()

	assert.False(t, span.SpanContext().IsValid(), "noop spans carry no context")
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_JaegerEndpoint(t *testing.T) {
	// the collector is only contacted on export, so nothing needs to listen here
	tp, shutdown, err := Setup("todo-api", "http://127.0.0.1:1/api/traces")
	require.NoError(t, err)

	_, ok := tp.(*sdktrace.TracerProvider)
	assert.True(t, ok, "expected an SDK tracer provider, got %T", tp)

	_, span := Tracer("todo-api").Start(context.Background(), "ToDoHandler.GetAll")
	assert.True(t, span.SpanContext().IsValid(), "Tracer should use the installed provider")
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTraceProvider_RecordsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp, err := newTraceProvider(exp, "todo-api")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "ToDoHandler.GetAll")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "ToDoHandler.GetAll", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "todo-api", service)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
