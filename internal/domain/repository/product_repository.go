package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductFilter filtros para barridos de stock del catálogo.
type ProductFilter struct {
	CategoryID string // vacío = todas las categorías
}

// ProductRepository puerto del catálogo (DIP). Toda consulta exige businessID:
// un producto de otra empresa se comporta como inexistente (nil, nil).
type ProductRepository interface {
	GetByID(ctx context.Context, businessID, productID string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, businessID, productID string) (*entity.Product, error)
	// SetStock es la única escritura que el libro hace sobre el catálogo.
	SetStock(ctx context.Context, businessID, productID string, stock int, at time.Time) error
	// ListStock devuelve el estado de stock de la empresa con el nombre de categoría resuelto.
	ListStock(ctx context.Context, businessID string, filter ProductFilter) ([]*entity.Product, error)
}
