package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.EventPublisher = (*EventPublisher)(nil)

// EventPublisher publica los eventos del libro: movimientos en un tópico y cambios de estado
// (alertas) en otro. La clave de partición es el product_id para conservar el orden por producto.
type EventPublisher struct {
	movements *Producer
	alerts    *Producer
	producer  string
}

// NewEventPublisher construye el publicador. producerName identifica al servicio en el sobre.
func NewEventPublisher(movements, alerts *Producer, producerName string) *EventPublisher {
	return &EventPublisher{movements: movements, alerts: alerts, producer: producerName}
}

func (p *EventPublisher) MovementApplied(ctx context.Context, ev inventory.MovementAppliedEvent) error {
	b, err := NewEnvelope(ctx, inventory.EventMovementApplied, p.producer, ev.BusinessID, ev.ProductID, ev.OccurredAt, ev)
	if err != nil {
		return err
	}
	return p.movements.Publish([]byte(ev.ProductID), b, eventHeader(inventory.EventMovementApplied))
}

func (p *EventPublisher) StatusChanged(ctx context.Context, ev inventory.StatusChangedEvent) error {
	b, err := NewEnvelope(ctx, inventory.EventStatusChanged, p.producer, ev.BusinessID, ev.ProductID, ev.OccurredAt, ev)
	if err != nil {
		return err
	}
	return p.alerts.Publish([]byte(ev.ProductID), b, eventHeader(inventory.EventStatusChanged))
}

func eventHeader(eventType string) kafka.Header {
	return kafka.Header{Key: "event_type", Value: []byte(eventType)}
}
