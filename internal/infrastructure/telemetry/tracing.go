package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes the spans opened by the gateway itself
const TracerName = "affiliate-gateway"

// Span attribute keys shared by the services, the platform client and the
// AMQP forwarder. Metric labels live in metrics.go.
const (
	SpanAttrSessionID   = attribute.Key("onboarding.session_id")
	SpanAttrStep        = attribute.Key("onboarding.step")
	SpanAttrOperation   = attribute.Key("onboarding.operation")
	SpanAttrChannel     = attribute.Key("share.channel")
	SpanAttrPath        = attribute.Key("platform.path")
	SpanAttrDestination = attribute.Key("messaging.destination.name")
	SpanAttrRoutingKey  = attribute.Key("messaging.rabbitmq.routing_key")
)

// StartSpan opens a span on the global provider. The caller ends it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, opts...)
}

// StartServiceSpan opens "<service>.<method>", e.g. "onboarding.profile"
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed. A nil span or error is a no-op.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// AddEvent attaches a named event to the span
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// GetTraceID is the hex trace id of the span in ctx, or "" when there is none
func GetTraceID(ctx context.Context) string {
	if id := trace.SpanContextFromContext(ctx).TraceID(); id.IsValid() {
		return id.String()
	}
	return ""
}

// GetSpanID is the hex span id of the span in ctx, or "" when there is none
func GetSpanID(ctx context.Context) string {
	if id := trace.SpanContextFromContext(ctx).SpanID(); id.IsValid() {
		return id.String()
	}
	return ""
}
