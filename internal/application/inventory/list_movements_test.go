package inventory_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func seedLedger(t *testing.T) *inventory.ListMovementsUseCase {
	t.Helper()
	opened := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	s := memory.NewStore()
	s.AddCategory(entity.Category{ID: catBebes, BusinessID: bizA, Name: "Bebidas"})
	s.AddProduct(entity.Product{ID: prodA, BusinessID: bizA, CategoryID: catBebes, SKU: "SKU-A", Name: "Agua", Stock: 10, Threshold: 5, UpdatedAt: opened})
	s.AddProduct(entity.Product{ID: prodB, BusinessID: bizB, SKU: "SKU-B", Name: "Bolsa", Stock: 10, Threshold: 5, UpdatedAt: opened})
	s.AddProduct(entity.Product{ID: "prod-c", BusinessID: bizA, SKU: "JAB-01", Name: "Jabón", Stock: 0, Threshold: 2, UpdatedAt: opened})
	clock := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	uc := newUseCase(s, inventory.WithClock(func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}))
	ops := []inventory.ApplyInput{
		{ProductID: prodA, Type: entity.MovementAdd, Quantity: 5},
		{ProductID: prodA, Type: entity.MovementSale, Quantity: 2},
		{ProductID: "prod-c", Type: entity.MovementAdd, Quantity: 7},
		{ProductID: "prod-c", Type: entity.MovementRemove, Quantity: 1},
	}
	for _, in := range ops {
		_, err := uc.Apply(context.Background(), actorA, in)
		require.NoError(t, err)
	}
	return inventory.NewListMovementsUseCase(s)
}

func TestListMovements_OrdenYPaginacion(t *testing.T) {
	uc := seedLedger(t)

	page, err := uc.List(context.Background(), actorA, dto.ListMovementsRequest{PageRequest: dto.PageRequest{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Pagination.Total, "apertura de prod-a + 4 movimientos")
	assert.Equal(t, 3, page.Pagination.TotalPages)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "REMOVE", page.Rows[0].Type, "más recientes primero")
	assert.Equal(t, -1, page.Rows[0].Delta)
	assert.True(t, page.Rows[0].Timestamp.After(page.Rows[1].Timestamp))

	asc, err := uc.List(context.Background(), actorA, dto.ListMovementsRequest{Order: "asc"})
	require.NoError(t, err)
	require.Len(t, asc.Rows, 5)
	assert.Equal(t, "system", asc.Rows[0].UserID)
	assert.Equal(t, dto.DefaultPageSize, asc.Pagination.PageSize)
}

func TestListMovements_Filtros(t *testing.T) {
	uc := seedLedger(t)
	ctx := context.Background()

	res, err := uc.List(ctx, actorA, dto.ListMovementsRequest{Type: "sale"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, prodA, res.Rows[0].ProductID)
	assert.Equal(t, "Bebidas", res.Rows[0].CategoryName)

	res, err = uc.List(ctx, actorA, dto.ListMovementsRequest{Search: "jab"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)

	res, err = uc.List(ctx, actorA, dto.ListMovementsRequest{CategoryID: catBebes})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)

	// Movimientos a las 10:00, 11:00, 12:00 y 13:00 del 2025-03-10.
	res, err = uc.List(ctx, actorA, dto.ListMovementsRequest{DateFrom: "2025-03-10T11:00:00Z", DateTo: "2025-03-10T12:00:00Z"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2, "ambos extremos RFC3339 son inclusivos")

	res, err = uc.List(ctx, actorA, dto.ListMovementsRequest{DateFrom: "2025-03-10", DateTo: "2025-03-10", ProductID: "prod-c"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2, "date_to sin hora cubre el día completo")

	res, err = uc.List(ctx, actorA, dto.ListMovementsRequest{DateFrom: "2025-03-11"})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.NotNil(t, res.Rows)
}

func TestListMovements_ParametrosInvalidos(t *testing.T) {
	uc := seedLedger(t)
	ctx := context.Background()

	_, err := uc.List(ctx, actorA, dto.ListMovementsRequest{Type: "GIFT"})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementType)

	_, err = uc.List(ctx, actorA, dto.ListMovementsRequest{DateFrom: "10/03/2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, actorA, dto.ListMovementsRequest{DateFrom: "2025-03-12", DateTo: "2025-03-10"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, actorA, dto.ListMovementsRequest{Order: "random"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, tenant.Actor{}, dto.ListMovementsRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListMovements_SoloEmpresaDelActor(t *testing.T) {
	uc := seedLedger(t)
	res, err := uc.List(context.Background(), actorA, dto.ListMovementsRequest{ProductID: prodB})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Pagination.Total)
}

func TestListMovements_PaginaEnormeNoDesborda(t *testing.T) {
	uc := seedLedger(t)

	for _, p := range []int{math.MaxInt/20 + 2, math.MaxInt, dto.MaxPage + 1} {
		var (
			page *dto.MovementPageDTO
			err  error
		)
		require.NotPanics(t, func() {
			page, err = uc.List(context.Background(), actorA, dto.ListMovementsRequest{PageRequest: dto.PageRequest{Page: p, PageSize: 20}})
		}, "page=%d", p)
		require.NoError(t, err)
		assert.Empty(t, page.Rows)
		assert.Equal(t, 5, page.Pagination.Total)
		assert.Equal(t, dto.MaxPage, page.Pagination.Page)
	}
}

func TestPageRequest_OffsetAcotado(t *testing.T) {
	p := dto.PageRequest{Page: math.MaxInt, PageSize: math.MaxInt}
	assert.Equal(t, (dto.MaxPage-1)*dto.MaxPageSize, p.Offset())
	assert.GreaterOrEqual(t, p.Offset(), 0)

	p.DefaultPage()
	assert.Equal(t, dto.MaxPage, p.Page)
	assert.Equal(t, dto.MaxPageSize, p.PageSize)
	assert.Equal(t, 0, dto.PageRequest{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 40, dto.PageRequest{Page: 3, PageSize: 20}.Offset())
}
