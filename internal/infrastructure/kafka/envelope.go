package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// EnvelopeVersion versión del sobre publicado.
const EnvelopeVersion = 1

// Envelope sobre común de todos los eventos del libro.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	BusinessID    string          `json:"business_id"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // product_id
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope serializa payload dentro de un sobre con id nuevo y el trace id del contexto, si hay.
func NewEnvelope(ctx context.Context, eventType, producer, businessID, correlationID string, occurredAt time.Time, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload %s: %w", eventType, err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  EnvelopeVersion,
		OccurredAt:    occurredAt.UTC(),
		Producer:      producer,
		BusinessID:    businessID,
		CorrelationID: correlationID,
		Payload:       raw,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		env.TraceID = sc.TraceID().String()
	}
	return json.Marshal(env)
}

// UnwrapPayload decodifica el payload de un sobre (consumidores y pruebas).
func UnwrapPayload[T any](b []byte) (Envelope, T, error) {
	var (
		env Envelope
		t   T
	)
	if err := json.Unmarshal(b, &env); err != nil {
		return env, t, fmt.Errorf("decode envelope: %w", err)
	}
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return env, t, fmt.Errorf("decode payload: %w", err)
	}
	return env, t, nil
}
