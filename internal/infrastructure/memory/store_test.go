package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddCategory(entity.Category{ID: "cat-1", BusinessID: "b1", Name: "Aseo"})
	s.AddProduct(entity.Product{ID: "p1", BusinessID: "b1", CategoryID: "cat-1", SKU: "S1", Name: "Shampoo", Stock: 8, Threshold: 3})
	s.AddProduct(entity.Product{ID: "p2", BusinessID: "b2", SKU: "S2", Name: "Otro", Stock: 0, Threshold: 1})
	return s
}

func TestStore_AddProductSiembraApertura(t *testing.T) {
	s := newStore()
	movs, err := s.ListByProduct(context.Background(), "b1", "p1", nil)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementAdd, movs[0].Type)
	assert.Equal(t, 8, movs[0].Quantity)
	assert.Equal(t, memory.SystemUser, movs[0].UserID)

	movs, err = s.ListByProduct(context.Background(), "b2", "p2", nil)
	require.NoError(t, err)
	assert.Empty(t, movs, "sin stock inicial no hay apertura")
}

func TestStore_AddProductRepetidoNoDuplicaApertura(t *testing.T) {
	s := newStore()
	err := s.AddProduct(entity.Product{ID: "p1", BusinessID: "b1", SKU: "S1", Name: "Shampoo", Stock: 50, Threshold: 3})
	assert.ErrorIs(t, err, domain.ErrConflict)

	movs, err := s.ListByProduct(context.Background(), "b1", "p1", nil)
	require.NoError(t, err)
	require.Len(t, movs, 1, "una sola apertura por producto")
	assert.Equal(t, catalog.OpeningMovementID("p1"), movs[0].ID)

	p, err := s.GetByID(context.Background(), "b1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock, "el producto original se conserva")
}

func TestStore_LecturasFiltranPorEmpresa(t *testing.T) {
	s := newStore()
	p, err := s.GetByID(context.Background(), "b2", "p1")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = s.GetByID(context.Background(), "b1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Aseo", p.CategoryName)

	list, err := s.ListStock(context.Background(), "b1", repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_RunDescartaEscriturasSiFalla(t *testing.T) {
	s := newStore()
	boom := errors.New("boom")
	err := s.Run(context.Background(), func(pr repository.ProductRepository, mr repository.MovementRepository) error {
		require.NoError(t, pr.SetStock(context.Background(), "b1", "p1", 2, time.Now()))
		require.NoError(t, mr.Create(context.Background(), &entity.Movement{
			ID: "m1", BusinessID: "b1", ProductID: "p1", UserID: "u", Type: entity.MovementSale, Quantity: 6, StockAfter: 2,
		}))
		// dentro de la tx se ve lo escrito
		p, _ := pr.GetByID(context.Background(), "b1", "p1")
		assert.Equal(t, 2, p.Stock)
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, _ := s.GetByID(context.Background(), "b1", "p1")
	assert.Equal(t, 8, p.Stock)
	assert.Len(t, s.Movements(), 1)
}

func TestStore_ClaveDeIdempotenciaUnicaPorEmpresa(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	mk := func(id, biz, product string) *entity.Movement {
		return &entity.Movement{ID: id, BusinessID: biz, ProductID: product, UserID: "u", Type: entity.MovementAdd, Quantity: 1, IdempotencyKey: "k"}
	}
	require.NoError(t, s.Create(ctx, mk("m1", "b1", "p1")))
	assert.ErrorIs(t, s.Create(ctx, mk("m2", "b1", "p1")), domain.ErrIdempotencyConflict)
	require.NoError(t, s.Create(ctx, mk("m3", "b2", "p2")))

	got, err := s.GetByIdempotencyKey(ctx, "b1", "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "m1", got.ID)
}

func TestStore_FallaInyectadaSeConsumeUnaVez(t *testing.T) {
	s := newStore()
	boom := errors.New("lock timeout")
	s.FailOn(memory.OpSetStock, boom)

	err := s.SetStock(context.Background(), "b1", "p1", 1, time.Now())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, s.SetStock(context.Background(), "b1", "p1", 1, time.Now()))
}

func TestStore_ListPagina(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Create(ctx, &entity.Movement{
			ID: string(rune('a' + i)), BusinessID: "b1", ProductID: "p1", UserID: "u",
			Type: entity.MovementAdd, Quantity: 1, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	from, to := base, base.Add(time.Hour)
	rows, total, err := s.List(ctx, "b1", repository.MovementFilter{From: &from, To: &to, Ascending: true}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].ID)
	assert.Equal(t, "Shampoo", rows[0].ProductName)

	rows, _, err = s.List(ctx, "b1", repository.MovementFilter{From: &from, To: &to}, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Un offset negativo (p. ej. por overflow) es fuera de rango, no un pánico.
	require.NotPanics(t, func() {
		rows, total, err = s.List(ctx, "b1", repository.MovementFilter{}, 20, -40)
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, rows)
}
