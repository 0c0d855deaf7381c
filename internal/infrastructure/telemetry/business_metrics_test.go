package telemetry_test

import (
	"context"
	"testing"

	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var bm *telemetry.BusinessMetrics
	ctx := context.Background()

	// Should not panic
	bm.RecordSessionOpened(ctx, false)
	bm.RecordStepCompleted(ctx, 1, 50)
	bm.RecordStepSkipped(ctx, 2)
	bm.RecordSessionFinished(ctx, 425, false)
	bm.RecordSessionDismissed(ctx, 1)
	bm.RecordUpstreamFailure(ctx, "profile")
	bm.RecordRedemption(ctx, "r1", telemetry.RedemptionSucceeded)
}

func TestBusinessMetrics_RecordStepCompleted(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordStepCompleted(ctx, 1, 50)
	bm.RecordStepCompleted(ctx, 2, 100)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	points := findSum(t, rm, "affiliate_onboarding_points_awarded_total")
	var total int64
	for _, dp := range points.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(150), total)

	steps := findSum(t, rm, "affiliate_onboarding_step_completed_total")
	require.Len(t, steps.DataPoints, 2)
	for _, dp := range steps.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("onboarding.step"))
		require.True(t, ok)
		assert.Contains(t, []string{"1", "2"}, v.AsString())
	}
}

func TestBusinessMetrics_RecordRedemption(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordRedemption(ctx, "r1", telemetry.RedemptionSucceeded)
	bm.RecordRedemption(ctx, "r1", telemetry.RedemptionInsufficient)
	bm.RecordRedemption(ctx, "r1", telemetry.RedemptionInsufficient)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sum := findSum(t, rm, "affiliate_reward_redemption_total")
	byOutcome := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(telemetry.AttrOutcome)
		byOutcome[v.AsString()] += dp.Value
	}
	assert.Equal(t, int64(1), byOutcome["succeeded"])
	assert.Equal(t, int64(2), byOutcome["insufficient_points"])
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "metric %s is not an int64 sum", name)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Sum[int64]{}
}
