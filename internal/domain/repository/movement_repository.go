package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros del listado de movimientos. Los campos vacíos/nil no filtran.
type MovementFilter struct {
	ProductID  string
	CategoryID string
	Type       entity.MovementType
	From       *time.Time // inclusivo
	To         *time.Time // exclusivo
	Search     string     // nombre o SKU del producto, sin distinguir mayúsculas
	Ascending  bool       // por defecto más recientes primero
}

// MovementRow movimiento con datos del producto desnormalizados para el listado.
type MovementRow struct {
	entity.Movement
	ProductName  string
	SKU          string
	CategoryID   string
	CategoryName string
}

// MovementRepository puerto del libro de movimientos: solo inserción y lectura.
// No existe actualización ni borrado.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByIdempotencyKey(ctx context.Context, businessID, key string) (*entity.Movement, error)
	// List devuelve una página de movimientos y el total que cumple el filtro.
	List(ctx context.Context, businessID string, filter MovementFilter, limit, offset int) ([]MovementRow, int, error)
	// ListByProduct devuelve los movimientos del producto en orden de escritura (ascendente),
	// opcionalmente hasta until (inclusivo). Se usa para reproducir el libro.
	ListByProduct(ctx context.Context, businessID, productID string, until *time.Time) ([]*entity.Movement, error)
}
