package event

import (
	"context"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogHandler writes every event it receives to the log
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a log sink for domain events
func NewLogHandler(l *zap.Logger) *LogHandler {
	return &LogHandler{logger: l.Named("events")}
}

// Handle logs the event
func (h *LogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	logger.Enrich(ctx, h.logger).Info("domain event",
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.String("user_id", e.UserID()),
		zap.Time("occurred_at", e.OccurredAt()),
	)
	return nil
}

// EventTypes subscribes to all events
func (h *LogHandler) EventTypes() []string { return nil }
