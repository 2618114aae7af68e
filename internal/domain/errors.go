package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidQuantity     = errors.New("la cantidad debe ser un entero positivo")
	ErrInvalidMovementType = errors.New("tipo de movimiento inválido")
	ErrInvalidGroupBy      = errors.New("agrupación inválida: use product o category")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrIdempotencyConflict = errors.New("la clave de idempotencia ya se usó con otro movimiento")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrStockOverflow       = errors.New("el stock resultante supera el máximo permitido")
	ErrTransient           = errors.New("error transitorio de almacenamiento, reintente")
	ErrLedgerMismatch      = errors.New("el stock no coincide con el libro de movimientos")
)

// InsufficientStockError detalla un rechazo por stock insuficiente.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Transient envuelve un error de infraestructura reintentable (timeout de lock, conexión perdida, etc.).
func Transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}
