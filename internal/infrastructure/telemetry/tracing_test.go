package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs a tracer provider backed by an in-memory recorder
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	t.Run("defaults to internal kind", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "onboarding.start")
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "onboarding.start", spans[0].Name())
		assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	})

	t.Run("applies kind and attributes", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "platform.save_profile",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(telemetry.SpanAttrPath.String("/onboarding/profile")),
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
		attrs := attrMap(spans[0].Attributes())
		assert.Equal(t, "/onboarding/profile", attrs[string(telemetry.SpanAttrPath)].AsString())
	})
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)
	sessionID := uuid.New()

	_, span := telemetry.StartServiceSpan(context.Background(), "onboarding", "share",
		telemetry.SpanAttrSessionID.String(sessionID.String()),
		telemetry.SpanAttrChannel.String("whatsapp"),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "onboarding.share", spans[0].Name())
	attrs := attrMap(spans[0].Attributes())
	assert.Len(t, attrs, 2)
	assert.Equal(t, sessionID.String(), attrs[string(telemetry.SpanAttrSessionID)].AsString())
	assert.Equal(t, "whatsapp", attrs[string(telemetry.SpanAttrChannel)].AsString())
}

func TestRecordError(t *testing.T) {
	t.Run("sets error status and exception event", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "platform.redeem_reward")
		telemetry.RecordError(span, errors.New("upstream unavailable"))
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "upstream unavailable", spans[0].Status().Description)
		require.NotEmpty(t, spans[0].Events())
		assert.Equal(t, "exception", spans[0].Events()[0].Name)
	})

	t.Run("nil error leaves status unset", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "noop")
		telemetry.RecordError(span, nil)
		span.End()

		assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
	})
}

func TestSetOKAndAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "onboarding.check_transaction")
	telemetry.AddEvent(span, "first_sale_detected", attribute.String("brand", "Tech Gadget"))
	telemetry.SetOK(span)
	span.End()

	recorded := sr.Ended()[0]
	assert.Equal(t, codes.Ok, recorded.Status().Code)
	require.Len(t, recorded.Events(), 1)
	assert.Equal(t, "first_sale_detected", recorded.Events()[0].Name)
	assert.Equal(t, "Tech Gadget", attrMap(recorded.Events()[0].Attributes)["brand"].AsString())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
}

func TestTraceAndSpanIDs(t *testing.T) {
	t.Run("empty without a span", func(t *testing.T) {
		assert.Empty(t, telemetry.GetTraceID(context.Background()))
		assert.Empty(t, telemetry.GetSpanID(context.Background()))
	})

	t.Run("taken from the active span", func(t *testing.T) {
		setupTestTracer(t)

		ctx, span := telemetry.StartSpan(context.Background(), "ids")
		defer span.End()

		assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.GetTraceID(ctx))
		assert.Equal(t, span.SpanContext().SpanID().String(), telemetry.GetSpanID(ctx))
	})
}
