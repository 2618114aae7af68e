// Package alerts agrega la foto de alertas de stock de una empresa.
package alerts

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// AlertsUseCase clasifica todos los productos de la empresa y devuelve los que no están en stock.
// Lectura pura: se recalcula en cada llamada.
type AlertsUseCase struct {
	productRepo repository.ProductRepository
}

// NewAlertsUseCase construye el caso de uso.
func NewAlertsUseCase(productRepo repository.ProductRepository) *AlertsUseCase {
	return &AlertsUseCase{productRepo: productRepo}
}

// ListAlerts particiona los productos en agotados y con stock bajo, ordenados por
// relación stock/umbral ascendente y luego por nombre.
func (uc *AlertsUseCase) ListAlerts(ctx context.Context, actor tenant.Actor) (*dto.AlertsDTO, error) {
	businessID, err := tenant.ResolveBusiness(actor)
	if err != nil {
		return nil, err
	}
	products, err := uc.productRepo.ListStock(ctx, businessID, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}

	out := &dto.AlertsDTO{
		OutOfStock: []dto.AlertDTO{},
		LowStock:   []dto.AlertDTO{},
		Summary:    dto.StatusSummaryDTO{TotalProducts: len(products)},
	}
	for _, p := range products {
		status := inventory.Classify(p.Stock, p.Threshold)
		switch status {
		case inventory.OutOfStock:
			out.Summary.OutOfStock++
			out.OutOfStock = append(out.OutOfStock, toAlert(p, status))
		case inventory.LowStock:
			out.Summary.LowStock++
			out.LowStock = append(out.LowStock, toAlert(p, status))
		default:
			out.Summary.InStock++
		}
	}
	sortBySeverity(out.OutOfStock)
	sortBySeverity(out.LowStock)
	return out, nil
}

func toAlert(p *entity.Product, status inventory.Status) dto.AlertDTO {
	return dto.AlertDTO{
		ProductID:    p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Stock:        p.Stock,
		Threshold:    p.Threshold,
		Status:       status.Label(),
		StockRatio:   inventory.StockRatio(p.Stock, p.Threshold),
		LastUpdated:  p.UpdatedAt,
	}
}

func sortBySeverity(rows []dto.AlertDTO) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].StockRatio.Cmp(rows[j].StockRatio); c != 0 {
			return c < 0
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ProductID < rows[j].ProductID
	})
}
