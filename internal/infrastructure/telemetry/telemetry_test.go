package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(context.Background(), Config{ServiceName: "procurement"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tel.TracingEnabled())
	assert.Nil(t, tel.TracerProvider())
	assert.NotNil(t, tel.Meter("x"))
	assert.NotNil(t, tel.Tracer("x"))
	assert.False(t, tel.LogCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOn")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOff")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestStartSpan_RecordsOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "quick_entry.create", AttrTenantID.String("t1"))
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, nil)

	_, failed := StartSpan(context.Background(), "lifecycle.submit")
	EndSpan(failed, errors.New("boom"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "quick_entry.create", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}
