package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const instrumentationName = "github.com/jhoicas/stock-ledger/internal/application/inventory"

// DefaultIdempotencyTTL vigencia de la respuesta cacheada para una clave de idempotencia.
const DefaultIdempotencyTTL = 24 * time.Hour

// ApplyMovementUseCase es el proyector de stock: aplica un movimiento de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y agrega exactamente un registro al libro por llamada exitosa.
type ApplyMovementUseCase struct {
	txRunner       TxRunner
	cache          IdempotencyCache
	publisher      EventPublisher
	log            zerolog.Logger
	idempotencyTTL time.Duration
	now            func() time.Time

	tracer   trace.Tracer
	applied  metric.Int64Counter
	rejected metric.Int64Counter
}

// Option configura el caso de uso.
type Option func(*ApplyMovementUseCase)

// WithIdempotencyTTL cambia la vigencia de la caché de idempotencia.
func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(uc *ApplyMovementUseCase) {
		if ttl > 0 {
			uc.idempotencyTTL = ttl
		}
	}
}

// WithClock reemplaza el reloj (pruebas).
func WithClock(now func() time.Time) Option {
	return func(uc *ApplyMovementUseCase) { uc.now = now }
}

// NewApplyMovementUseCase construye el caso de uso. cache y publisher pueden ser nil.
func NewApplyMovementUseCase(
	txRunner TxRunner,
	cache IdempotencyCache,
	publisher EventPublisher,
	log zerolog.Logger,
	opts ...Option,
) *ApplyMovementUseCase {
	if cache == nil {
		cache = NoopCache{}
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	meter := otel.Meter(instrumentationName)
	applied, err := meter.Int64Counter("ledger.movements.applied",
		metric.WithDescription("Movimientos confirmados en el libro"))
	if err != nil {
		applied = noop.Int64Counter{}
	}
	rejected, err := meter.Int64Counter("ledger.movements.rejected",
		metric.WithDescription("Movimientos rechazados por validación o invariantes"))
	if err != nil {
		rejected = noop.Int64Counter{}
	}

	uc := &ApplyMovementUseCase{
		txRunner:       txRunner,
		cache:          cache,
		publisher:      publisher,
		log:            log.With().Str("component", "stock_projector").Logger(),
		idempotencyTTL: DefaultIdempotencyTTL,
		now:            time.Now,
		tracer:         otel.Tracer(instrumentationName),
		applied:        applied,
		rejected:       rejected,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ApplyInput entrada del proyector. El businessID y el usuario salen del actor.
type ApplyInput struct {
	ProductID      string
	Type           entity.MovementType
	Quantity       int
	IdempotencyKey string // opcional
	Reason         string // opcional
}

// ApplyResult resultado de un movimiento aceptado.
type ApplyResult struct {
	MovementID string
	Stock      int
	Status     inventory.Status
	Replayed   bool // true si se devolvió la respuesta de una clave de idempotencia ya usada
}

// txOutcome lo que la transacción necesita comunicar al post-commit.
type txOutcome struct {
	result   ApplyResult
	product  entity.Product
	previous inventory.Status
	movement *entity.Movement
}

// Apply valida, bloquea la fila del producto, calcula el nuevo stock y, en la misma transacción,
// escribe el stock y agrega el movimiento. Si el stock quedaría negativo no se escribe nada.
func (uc *ApplyMovementUseCase) Apply(ctx context.Context, actor tenant.Actor, in ApplyInput) (*ApplyResult, error) {
	businessID, userID, err := tenant.ResolveActor(actor)
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 || in.Quantity > entity.MaxQuantity {
		uc.reject(ctx, "invalid_quantity")
		return nil, domain.ErrInvalidQuantity
	}
	if !in.Type.Valid() {
		uc.reject(ctx, "invalid_type")
		return nil, domain.ErrInvalidMovementType
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, domain.ErrProductNotFound
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	ctx, span := uc.tracer.Start(ctx, "ledger.ApplyMovement", trace.WithAttributes(
		attribute.String("business.id", businessID),
		attribute.String("product.id", in.ProductID),
		attribute.String("movement.type", string(in.Type)),
		attribute.Int("movement.quantity", in.Quantity),
	))
	defer span.End()

	// Atajo: respuesta ya entregada para esta clave.
	if key != "" {
		cached, cerr := uc.cache.Get(ctx, businessID, key)
		if cerr != nil {
			uc.log.Warn().Err(cerr).Str("business_id", businessID).Msg("caché de idempotencia no disponible")
		}
		if cached != nil {
			if cached.ProductID != in.ProductID || cached.Type != in.Type || cached.Quantity != in.Quantity {
				uc.reject(ctx, "idempotency_conflict")
				return nil, domain.ErrIdempotencyConflict
			}
			span.SetAttributes(attribute.Bool("movement.replayed", true))
			return &ApplyResult{
				MovementID: cached.MovementID,
				Stock:      cached.Stock,
				Status:     inventory.Classify(cached.Stock, cached.Threshold),
				Replayed:   true,
			}, nil
		}
	}

	var out txOutcome
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error {
		// Bloquea la fila del producto (filtrada por empresa) para serializar movimientos concurrentes.
		product, err := productRepo.GetForUpdate(ctx, businessID, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil || !tenant.Owns(businessID, product.BusinessID) {
			return domain.ErrProductNotFound
		}
		out.product = *product
		out.previous = inventory.Classify(product.Stock, product.Threshold)

		if key != "" {
			prior, err := movRepo.GetByIdempotencyKey(ctx, businessID, key)
			if err != nil {
				return err
			}
			if prior != nil {
				if !prior.SameRequest(in.ProductID, in.Type, in.Quantity) {
					return domain.ErrIdempotencyConflict
				}
				out.result = ApplyResult{
					MovementID: prior.ID,
					Stock:      prior.StockAfter,
					Status:     inventory.Classify(prior.StockAfter, product.Threshold),
					Replayed:   true,
				}
				return nil
			}
		}

		if in.Type.Sign() > 0 && product.Stock > entity.MaxStock-in.Quantity {
			return domain.ErrStockOverflow
		}
		candidate := product.Stock + in.Type.Delta(in.Quantity)
		if candidate < 0 {
			return &domain.InsufficientStockError{Requested: in.Quantity, Available: product.Stock}
		}

		now := uc.now()
		if err := productRepo.SetStock(ctx, businessID, product.ID, candidate, now); err != nil {
			return err
		}
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:             id.String(),
			BusinessID:     businessID,
			ProductID:      product.ID,
			UserID:         userID,
			Type:           in.Type,
			Quantity:       in.Quantity,
			StockAfter:     candidate,
			IdempotencyKey: key,
			Reason:         strings.TrimSpace(in.Reason),
			CreatedAt:      now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		out.movement = mov
		out.product.Stock = candidate
		out.product.UpdatedAt = now
		out.result = ApplyResult{
			MovementID: mov.ID,
			Stock:      candidate,
			Status:     inventory.Classify(candidate, product.Threshold),
		}
		return nil
	})
	if err != nil {
		uc.fail(ctx, span, businessID, in, err)
		return nil, err
	}

	if key != "" {
		cerr := uc.cache.Put(ctx, businessID, key, IdempotentResult{
			MovementID: out.result.MovementID,
			ProductID:  in.ProductID,
			Type:       in.Type,
			Quantity:   in.Quantity,
			Stock:      out.result.Stock,
			Threshold:  out.product.Threshold,
		}, uc.idempotencyTTL)
		if cerr != nil {
			uc.log.Warn().Err(cerr).Str("business_id", businessID).Msg("no se pudo cachear la clave de idempotencia")
		}
	}

	if out.result.Replayed {
		span.SetAttributes(attribute.Bool("movement.replayed", true))
		return &out.result, nil
	}

	uc.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(in.Type))))
	uc.log.Info().
		Str("business_id", businessID).
		Str("product_id", in.ProductID).
		Str("movement_id", out.movement.ID).
		Str("type", string(in.Type)).
		Int("quantity", in.Quantity).
		Int("stock", out.result.Stock).
		Msg("movimiento aplicado")

	uc.publish(ctx, out)
	return &out.result, nil
}

// publish emite los eventos posteriores al commit. Un fallo aquí no revierte el movimiento.
func (uc *ApplyMovementUseCase) publish(ctx context.Context, out txOutcome) {
	mov := out.movement
	if err := uc.publisher.MovementApplied(ctx, MovementAppliedEvent{
		MovementID: mov.ID,
		BusinessID: mov.BusinessID,
		ProductID:  mov.ProductID,
		UserID:     mov.UserID,
		Type:       string(mov.Type),
		Quantity:   mov.Quantity,
		Delta:      mov.Delta(),
		StockAfter: mov.StockAfter,
		OccurredAt: mov.CreatedAt,
	}); err != nil {
		uc.log.Error().Err(err).Str("movement_id", mov.ID).Msg("publicar movimiento aplicado")
	}
	if out.previous == out.result.Status {
		return
	}
	if err := uc.publisher.StatusChanged(ctx, StatusChangedEvent{
		BusinessID: mov.BusinessID,
		ProductID:  mov.ProductID,
		SKU:        out.product.SKU,
		Name:       out.product.Name,
		Previous:   out.previous.Label(),
		Current:    out.result.Status.Label(),
		Stock:      out.result.Stock,
		Threshold:  out.product.Threshold,
		OccurredAt: mov.CreatedAt,
	}); err != nil {
		uc.log.Error().Err(err).Str("product_id", mov.ProductID).Msg("publicar cambio de estado")
	}
}

func (uc *ApplyMovementUseCase) fail(ctx context.Context, span trace.Span, businessID string, in ApplyInput, err error) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		uc.reject(ctx, "insufficient_stock")
		uc.log.Warn().
			Str("business_id", businessID).
			Str("product_id", in.ProductID).
			Int("requested", insufficient.Requested).
			Int("available", insufficient.Available).
			Msg("movimiento rechazado por stock insuficiente")
	case errors.Is(err, domain.ErrProductNotFound):
		uc.reject(ctx, "product_not_found")
	case errors.Is(err, domain.ErrIdempotencyConflict):
		uc.reject(ctx, "idempotency_conflict")
	case errors.Is(err, domain.ErrStockOverflow):
		uc.reject(ctx, "stock_overflow")
	default:
		uc.reject(ctx, "storage")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.log.Error().Err(err).
			Str("business_id", businessID).
			Str("product_id", in.ProductID).
			Bool("transient", errors.Is(err, domain.ErrTransient)).
			Msg("transacción de movimiento fallida")
	}
}

func (uc *ApplyMovementUseCase) reject(ctx context.Context, reason string) {
	uc.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
