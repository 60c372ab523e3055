package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/contracts"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Producer - часть *rabbitmq_producer.Publisher, нужная адаптеру.
type Producer interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// EventPublisher публикует доменные события в topic-обменник, ключ маршрутизации - тип события.
type EventPublisher struct {
	producer Producer
	appName  string
	timeout  time.Duration
}

var _ port.EventPublisherPort = (*EventPublisher)(nil)

func NewEventPublisher(producer Producer, appName string) (*EventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &EventPublisher{producer: producer, appName: appName, timeout: 10 * time.Second}, nil
}

func (a *EventPublisher) Publish(ctx context.Context, event domain.PropertyEvent) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "EventPublisher",
		"routing_key": event.Type,
		"property_id": event.PropertyID,
	})

	body, err := json.Marshal(event)
	if err != nil {
		adapterLogger.Error("Failed to marshal event", err, nil)
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := contracts.Validate(contracts.PropertyEventV1, body); err != nil {
		adapterLogger.Error("Event does not match contract", err, nil)
		return fmt.Errorf("rabbitmq adapter: invalid event %s: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		AppId:        a.appName,
		Headers:      amqp.Table{"x-event-version": "1.0.0"},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, event.Type, msg); err != nil {
		adapterLogger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s for property %s: %w", event.Type, event.PropertyID, err)
	}

	adapterLogger.Debug("Event published", nil)
	return nil
}

// NoopEventPublisher используется, когда RabbitMQ выключен.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(ctx context.Context, event domain.PropertyEvent) error {
	contextkeys.LoggerFromContext(ctx).Debug("Event publishing disabled, dropping event", port.Fields{"event_type": event.Type})
	return nil
}
