package services

import (
	"context"
	"encoding/json"
	"time"

	"vinoteca/internal/logging"
)

// Event is the envelope published to the message broker after a mutation
// commits. Consumers key on the routing key, which equals Type.
type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// EventPublisher pushes serialized events to the broker. pkg/rabbitmq
// satisfies it; NopPublisher stands in when no broker is configured.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }

// publishEvent emits an event without ever failing the mutation that
// triggered it. Broker trouble is logged and swallowed.
func publishEvent(ctx context.Context, pub EventPublisher, eventType, entityID string, payload any) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(Event{
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("failed to marshal event", "type", eventType, "error", err)
		return
	}
	if err := pub.Publish(ctx, eventType, body); err != nil {
		logging.FromContext(ctx).Warn("failed to publish event", "type", eventType, "error", err)
	}
}
