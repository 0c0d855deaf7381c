package telemetry_test

import (
	"context"
	"testing"

	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "affiliate-gateway-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"), "disabled provider falls back to the global tracer")
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	require.NoError(t, tp.EnableSpanProfiles())
	assert.False(t, tp.IsSpanProfilesEnabled(), "span profiles need a live provider")
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	tests := []struct {
		name  string
		ratio float64
	}{
		{"always", 1.0},
		{"never", 0.0},
		{"ratio", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			// The gRPC exporter dials lazily, so no collector is needed.
			tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
				Enabled:           true,
				CollectorEndpoint: "localhost:14317",
				SamplingRatio:     tt.ratio,
				ServiceName:       "affiliate-gateway-test",
				Insecure:          true,
			}, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.True(t, tp.IsEnabled())

			_, span := tp.Tracer("test").Start(ctx, "op")
			span.End()

			require.NoError(t, tp.EnableSpanProfiles())
			require.NoError(t, tp.EnableSpanProfiles())
			assert.True(t, tp.IsSpanProfilesEnabled())

			shutdownCtx, cancel := context.WithCancel(ctx)
			cancel()
			_ = tp.Shutdown(shutdownCtx)
		})
	}
}
