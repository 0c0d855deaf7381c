// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the onboarding gateway.
// It tracks progress through the onboarding steps, points awarded locally,
// upstream failures and reward redemptions.
//
// All Record methods are safe to call on a nil *BusinessMetrics.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	sessionOpenedTotal    *Counter
	stepCompletedTotal    *Counter
	stepSkippedTotal      *Counter
	pointsAwardedTotal    *Counter
	sessionFinishedTotal  *Counter
	sessionDismissedTotal *Counter
	upstreamFailureTotal  *Counter
	redemptionTotal       *Counter

	finishedPoints *Histogram
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.sessionOpenedTotal, "affiliate_onboarding_session_opened_total", "Total number of onboarding sessions opened or resumed", "{sessions}"},
		{&bm.stepCompletedTotal, "affiliate_onboarding_step_completed_total", "Total number of onboarding steps completed with a reward", "{steps}"},
		{&bm.stepSkippedTotal, "affiliate_onboarding_step_skipped_total", "Total number of onboarding steps skipped", "{steps}"},
		{&bm.pointsAwardedTotal, "affiliate_onboarding_points_awarded_total", "Total points shown as awarded by the onboarding flow", "{points}"},
		{&bm.sessionFinishedTotal, "affiliate_onboarding_session_finished_total", "Total number of onboarding sessions finished", "{sessions}"},
		{&bm.sessionDismissedTotal, "affiliate_onboarding_session_dismissed_total", "Total number of onboarding sessions dismissed", "{sessions}"},
		{&bm.upstreamFailureTotal, "affiliate_onboarding_upstream_failure_total", "Total number of failed platform calls by operation", "{calls}"},
		{&bm.redemptionTotal, "affiliate_reward_redemption_total", "Total number of reward redemption attempts by outcome", "{redemptions}"},
	}

	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.finishedPoints, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "affiliate_onboarding_finished_points",
		Description: "Local points total of sessions at finish",
		Unit:        "{points}",
		Boundaries:  []float64{0, 50, 150, 225, 425},
	})
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Onboarding Metrics
// =============================================================================

// RecordSessionOpened records a session being opened, or resumed if it already existed.
func (bm *BusinessMetrics) RecordSessionOpened(ctx context.Context, resumed bool) {
	if bm == nil {
		return
	}
	bm.sessionOpenedTotal.Inc(ctx, AttrResumed.Bool(resumed))
}

// RecordStepCompleted records a rewarded step and the points it awarded.
func (bm *BusinessMetrics) RecordStepCompleted(ctx context.Context, step int, points int) {
	if bm == nil {
		return
	}
	attr := AttrStep.String(strconv.Itoa(step))
	bm.stepCompletedTotal.Inc(ctx, attr)
	bm.pointsAwardedTotal.Add(ctx, int64(points), attr)
}

// RecordStepSkipped records a skipped step.
func (bm *BusinessMetrics) RecordStepSkipped(ctx context.Context, step int) {
	if bm == nil {
		return
	}
	bm.stepSkippedTotal.Inc(ctx, AttrStep.String(strconv.Itoa(step)))
}

// RecordSessionFinished records a finished session and its local points total.
func (bm *BusinessMetrics) RecordSessionFinished(ctx context.Context, totalPoints int, saleSkipped bool) {
	if bm == nil {
		return
	}
	attr := AttrSaleSkipped.Bool(saleSkipped)
	bm.sessionFinishedTotal.Inc(ctx, attr)
	bm.finishedPoints.Record(ctx, float64(totalPoints), attr)
}

// RecordSessionDismissed records a dismissed session with the number of
// steps completed before the user left.
func (bm *BusinessMetrics) RecordSessionDismissed(ctx context.Context, stepsCompleted int) {
	if bm == nil {
		return
	}
	bm.sessionDismissedTotal.Inc(ctx, AttrStep.String(strconv.Itoa(stepsCompleted)))
}

// RecordUpstreamFailure records a failed platform call.
func (bm *BusinessMetrics) RecordUpstreamFailure(ctx context.Context, operation string) {
	if bm == nil {
		return
	}
	bm.upstreamFailureTotal.Inc(ctx, AttrOperation.String(operation))
}

// =============================================================================
// Redemption Metrics
// =============================================================================

// RedemptionOutcome represents the result of a redemption for metrics labeling.
type RedemptionOutcome string

const (
	RedemptionSucceeded    RedemptionOutcome = "succeeded"
	RedemptionInsufficient RedemptionOutcome = "insufficient_points"
	RedemptionDuplicate    RedemptionOutcome = "duplicate"
	RedemptionRejected     RedemptionOutcome = "rejected"
	RedemptionFailed       RedemptionOutcome = "failed"
)

// RecordRedemption records a redemption attempt.
func (bm *BusinessMetrics) RecordRedemption(ctx context.Context, rewardID string, outcome RedemptionOutcome) {
	if bm == nil {
		return
	}
	bm.redemptionTotal.Inc(ctx,
		AttrRewardID.String(rewardID),
		AttrOutcome.String(string(outcome)),
	)
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
