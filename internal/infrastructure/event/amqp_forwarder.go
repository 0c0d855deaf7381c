package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AMQPPublisher is the part of *amqp.Channel the forwarder needs
type AMQPPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPForwarder publishes every domain event it receives to a topic exchange.
// The routing key is "<prefix>.<event type>".
type AMQPForwarder struct {
	publisher  AMQPPublisher
	exchange   string
	routingKey string
	logger     *zap.Logger
	closer     func() error
}

// NewAMQPForwarder wraps an existing channel
func NewAMQPForwarder(publisher AMQPPublisher, exchange, routingKey string, logger *zap.Logger) *AMQPForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPForwarder{
		publisher:  publisher,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

// DialAMQPForwarder connects to the broker and declares the exchange
func DialAMQPForwarder(cfg config.EventsConfig, logger *zap.Logger) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	f := NewAMQPForwarder(ch, cfg.Exchange, cfg.RoutingKey, logger)
	f.closer = func() error {
		_ = ch.Close()
		return conn.Close()
	}
	logger.Info("AMQP event forwarder connected", zap.String("exchange", cfg.Exchange))
	return f, nil
}

// Handle publishes e as a persistent JSON message with the trace context in
// its headers
func (f *AMQPForwarder) Handle(ctx context.Context, e shared.DomainEvent) error {
	key := f.routingKeyFor(e.EventType())
	ctx, span := telemetry.StartSpan(ctx, "amqp.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			telemetry.SpanAttrDestination.String(f.exchange),
			telemetry.SpanAttrRoutingKey.String(key),
		),
	)
	defer span.End()

	body, err := json.Marshal(e)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to marshal event %s: %w", e.EventType(), err)
	}

	headers := amqp.Table{
		"event_type": e.EventType(),
		"user_id":    e.UserID(),
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))

	err = f.publisher.PublishWithContext(ctx, f.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.EventID().String(),
		Type:         e.EventType(),
		Timestamp:    e.OccurredAt().UTC().Truncate(time.Second),
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to publish event %s: %w", e.EventType(), err)
	}
	telemetry.SetOK(span)
	return nil
}

// EventTypes subscribes to all events
func (f *AMQPForwarder) EventTypes() []string { return nil }

// Close closes the broker connection if the forwarder opened it
func (f *AMQPForwarder) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer()
}

func (f *AMQPForwarder) routingKeyFor(eventType string) string {
	if f.routingKey == "" {
		return eventType
	}
	return strings.TrimSuffix(f.routingKey, ".") + "." + eventType
}

// headerCarrier adapts AMQP headers to propagation.TextMapCarrier
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	s, _ := c[key].(string)
	return s
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
