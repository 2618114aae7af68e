package alerts_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func TestListAlerts_ParticionaYOrdena(t *testing.T) {
	s := memory.NewStore()
	s.AddCategory(entity.Category{ID: "c1", BusinessID: "b1", Name: "Lácteos"})
	s.AddProduct(entity.Product{ID: "p1", BusinessID: "b1", CategoryID: "c1", Name: "Leche", SKU: "L1", Stock: 0, Threshold: 5})
	s.AddProduct(entity.Product{ID: "p2", BusinessID: "b1", Name: "Queso", SKU: "Q1", Stock: 4, Threshold: 10})
	s.AddProduct(entity.Product{ID: "p3", BusinessID: "b1", Name: "Arepa", SKU: "A1", Stock: 1, Threshold: 10})
	s.AddProduct(entity.Product{ID: "p4", BusinessID: "b1", Name: "Yogur", SKU: "Y1", Stock: 10, Threshold: 10})
	s.AddProduct(entity.Product{ID: "p5", BusinessID: "b1", Name: "Avena", SKU: "V1", Stock: 2, Threshold: 20})
	s.AddProduct(entity.Product{ID: "p6", BusinessID: "b1", Name: "Sal", SKU: "S1", Stock: 0, Threshold: 0})
	s.AddProduct(entity.Product{ID: "px", BusinessID: "b2", Name: "Ajeno", SKU: "X1", Stock: 0, Threshold: 5})

	res, err := alerts.NewAlertsUseCase(s).ListAlerts(context.Background(), tenant.Actor{BusinessID: "b1"})
	require.NoError(t, err)

	require.Len(t, res.OutOfStock, 2)
	assert.Equal(t, "p1", res.OutOfStock[0].ProductID, "mismo ratio 0: desempata por nombre")
	assert.Equal(t, "Lácteos", res.OutOfStock[0].CategoryName)
	assert.Equal(t, "out_of_stock", res.OutOfStock[0].Status)
	assert.Equal(t, "p6", res.OutOfStock[1].ProductID)

	require.Len(t, res.LowStock, 3)
	// Avena 0.10 = Arepa 0.10 < Queso 0.40
	assert.Equal(t, []string{"p3", "p5", "p2"}, []string{res.LowStock[0].ProductID, res.LowStock[1].ProductID, res.LowStock[2].ProductID})
	assert.True(t, decimal.RequireFromString("0.4").Equal(res.LowStock[2].StockRatio))
	assert.Equal(t, "low_stock", res.LowStock[0].Status)

	assert.Equal(t, 6, res.Summary.TotalProducts)
	assert.Equal(t, 1, res.Summary.InStock)
	assert.Equal(t, 3, res.Summary.LowStock)
	assert.Equal(t, 2, res.Summary.OutOfStock)
}

func TestListAlerts_SinAlertas(t *testing.T) {
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "p1", BusinessID: "b1", Name: "Leche", Stock: 9, Threshold: 5})

	res, err := alerts.NewAlertsUseCase(s).ListAlerts(context.Background(), tenant.Actor{BusinessID: "b1"})
	require.NoError(t, err)
	assert.NotNil(t, res.OutOfStock)
	assert.Empty(t, res.OutOfStock)
	assert.Empty(t, res.LowStock)
	assert.Equal(t, 1, res.Summary.InStock)
}

func TestListAlerts_SinEmpresa(t *testing.T) {
	_, err := alerts.NewAlertsUseCase(memory.NewStore()).ListAlerts(context.Background(), tenant.Actor{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func alertIDs(rows []dto.AlertDTO) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProductID)
	}
	return ids
}

// Los movimientos aplicados por el proyector se reflejan en las alertas al instante.
func TestListAlerts_SiguenLosMovimientos(t *testing.T) {
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "P", BusinessID: "b1", Name: "Panela", SKU: "P1", Stock: 10, Threshold: 5})
	actor := tenant.Actor{BusinessID: "b1", UserID: "u1", Role: tenant.RoleBodeguero}
	apply := inventory.NewApplyMovementUseCase(s, nil, nil, zerolog.Nop())
	alertsUC := alerts.NewAlertsUseCase(s)

	steps := []struct {
		name       string
		typ        entity.MovementType
		qty        int
		rejected   bool
		stock      int
		outOfStock []string
		lowStock   []string
	}{
		{name: "entrada de 5", typ: entity.MovementAdd, qty: 5, stock: 15},
		{name: "venta mayor al stock", typ: entity.MovementSale, qty: 20, rejected: true, stock: 15},
		{name: "venta de 12", typ: entity.MovementSale, qty: 12, stock: 3, lowStock: []string{"P"}},
		{name: "venta de 3", typ: entity.MovementSale, qty: 3, stock: 0, outOfStock: []string{"P"}},
	}
	for _, st := range steps {
		res, err := apply.Apply(context.Background(), actor, inventory.ApplyInput{ProductID: "P", Type: st.typ, Quantity: st.qty})
		if st.rejected {
			require.ErrorIs(t, err, domain.ErrInsufficientStock, st.name)
		} else {
			require.NoError(t, err, st.name)
			assert.Equal(t, st.stock, res.Stock, st.name)
		}

		p, err := s.GetByID(context.Background(), "b1", "P")
		require.NoError(t, err)
		assert.Equal(t, st.stock, p.Stock, st.name)

		got, err := alertsUC.ListAlerts(context.Background(), actor)
		require.NoError(t, err)
		assert.ElementsMatch(t, st.outOfStock, alertIDs(got.OutOfStock), st.name)
		assert.ElementsMatch(t, st.lowStock, alertIDs(got.LowStock), st.name)
		assert.Equal(t, 1, got.Summary.TotalProducts, st.name)
	}
}
