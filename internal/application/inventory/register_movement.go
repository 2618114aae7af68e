package inventory

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ApplyFromRequest adapta el request HTTP al caso de uso Apply(ctx, actor, ApplyInput).
// El tipo se valida contra el enum cerrado aquí, en la frontera.
func (uc *ApplyMovementUseCase) ApplyFromRequest(ctx context.Context, actor tenant.Actor, idempotencyKey string, in dto.ApplyMovementRequest) (*dto.ApplyMovementResponse, error) {
	qty, err := parseQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	mt, ok := entity.ParseMovementType(in.Type)
	if !ok {
		return nil, domain.ErrInvalidMovementType
	}
	res, err := uc.Apply(ctx, actor, ApplyInput{
		ProductID:      in.ProductID,
		Type:           mt,
		Quantity:       qty,
		IdempotencyKey: idempotencyKey,
		Reason:         in.Reason,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ApplyMovementResponse{
		MovementID: res.MovementID,
		Stock:      res.Stock,
		Status:     res.Status.Label(),
		Replayed:   res.Replayed,
	}, nil
}

// parseQuantity acepta sólo enteros en 1..MaxQuantity; decimales y valores
// fuera de rango son cantidad inválida.
func parseQuantity(n json.Number) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(n.String()), 10, 64)
	if err != nil || v <= 0 || v > entity.MaxQuantity {
		return 0, domain.ErrInvalidQuantity
	}
	return int(v), nil
}
