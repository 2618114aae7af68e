package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la actualización de stock y el registro del movimiento se confirman o se descartan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// IdempotentResult respuesta ya entregada para una clave de idempotencia.
type IdempotentResult struct {
	MovementID string              `json:"movement_id"`
	ProductID  string              `json:"product_id"`
	Type       entity.MovementType `json:"type"`
	Quantity   int                 `json:"quantity"`
	Stock      int                 `json:"stock"`
	Threshold  int                 `json:"threshold"`
}

// IdempotencyCache atajo rápido (Redis) delante de la clave guardada en el movimiento.
// Get devuelve (nil, nil) si no hay entrada.
type IdempotencyCache interface {
	Get(ctx context.Context, businessID, key string) (*IdempotentResult, error)
	Put(ctx context.Context, businessID, key string, result IdempotentResult, ttl time.Duration) error
}

// EventPublisher publica eventos del libro para consumidores externos (notificaciones, exportes).
type EventPublisher interface {
	MovementApplied(ctx context.Context, ev MovementAppliedEvent) error
	StatusChanged(ctx context.Context, ev StatusChangedEvent) error
}

// NoopCache caché deshabilitada.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, string) (*IdempotentResult, error) { return nil, nil }
func (NoopCache) Put(context.Context, string, string, IdempotentResult, time.Duration) error {
	return nil
}

// NoopPublisher descarta los eventos (Kafka no configurado).
type NoopPublisher struct{}

func (NoopPublisher) MovementApplied(context.Context, MovementAppliedEvent) error { return nil }
func (NoopPublisher) StatusChanged(context.Context, StatusChangedEvent) error     { return nil }
