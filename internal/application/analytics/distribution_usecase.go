// Package analytics contiene las vistas de distribución de stock y de déficit contra umbral.
package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Granularidades soportadas.
const (
	GroupByProduct  = "product"
	GroupByCategory = "category"
)

// UncategorizedLabel etiqueta del grupo de productos sin categoría (clave vacía).
const UncategorizedLabel = "Sin categoría"

// DistributionUseCase vistas agregadas de solo lectura sobre el estado de stock.
//
// Fuente de datos: ProductRepository.ListStock (una sola lectura por llamada).
type DistributionUseCase struct {
	productRepo repository.ProductRepository
}

// NewDistributionUseCase construye el caso de uso.
func NewDistributionUseCase(productRepo repository.ProductRepository) *DistributionUseCase {
	return &DistributionUseCase{productRepo: productRepo}
}

// Distribution stock por producto o por categoría.
// group_by=category con category_id devuelve filas por producto de esa categoría.
func (uc *DistributionUseCase) Distribution(ctx context.Context, actor tenant.Actor, req dto.AnalyticsRequest) (*dto.DistributionDTO, error) {
	groupBy, products, err := uc.scan(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	out := &dto.DistributionDTO{GroupBy: groupBy, Rows: []dto.DistributionRowDTO{}}
	out.Summary.TotalProducts = len(products)

	if groupBy == GroupByProduct {
		for _, p := range products {
			out.Summary.TotalStock += p.Stock
			out.Rows = append(out.Rows, dto.DistributionRowDTO{
				Key: p.ID, Label: p.Name, SKU: p.SKU, Stock: p.Stock, ProductCount: 1,
			})
		}
	} else {
		idx := map[string]int{}
		for _, p := range products {
			out.Summary.TotalStock += p.Stock
			i, ok := idx[p.CategoryID]
			if !ok {
				i = len(out.Rows)
				idx[p.CategoryID] = i
				out.Rows = append(out.Rows, dto.DistributionRowDTO{Key: p.CategoryID, Label: categoryLabel(p)})
			}
			out.Rows[i].Stock += p.Stock
			out.Rows[i].ProductCount++
		}
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i], out.Rows[j]
		if a.Stock != b.Stock {
			return a.Stock > b.Stock
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Key < b.Key
	})
	return out, nil
}

// Deficit unidades faltantes contra el umbral. Los totales del resumen concilian con las filas:
// Σ filas.Deficit == TotalDeficit y Σ filas.ProductsBelowThreshold == ProductsBelowThreshold.
func (uc *DistributionUseCase) Deficit(ctx context.Context, actor tenant.Actor, req dto.AnalyticsRequest) (*dto.DeficitDTO, error) {
	groupBy, products, err := uc.scan(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	out := &dto.DeficitDTO{GroupBy: groupBy, Rows: []dto.DeficitRowDTO{}}
	out.Summary.TotalProducts = len(products)

	var covered, thresholdTotal int
	idx := map[string]int{}
	for _, p := range products {
		deficit := inventory.Deficit(p.Stock, p.Threshold)
		below := 0
		if deficit > 0 {
			below = 1
		}
		out.Summary.TotalDeficit += deficit
		out.Summary.ProductsBelowThreshold += below
		covered += min(p.Stock, p.Threshold)
		thresholdTotal += p.Threshold

		if groupBy == GroupByProduct {
			out.Rows = append(out.Rows, dto.DeficitRowDTO{
				Key:                    p.ID,
				Label:                  p.Name,
				SKU:                    p.SKU,
				Stock:                  p.Stock,
				Threshold:              p.Threshold,
				Deficit:                deficit,
				Status:                 inventory.Classify(p.Stock, p.Threshold).Label(),
				ProductCount:           1,
				ProductsBelowThreshold: below,
			})
			continue
		}
		i, ok := idx[p.CategoryID]
		if !ok {
			i = len(out.Rows)
			idx[p.CategoryID] = i
			out.Rows = append(out.Rows, dto.DeficitRowDTO{Key: p.CategoryID, Label: categoryLabel(p)})
		}
		row := &out.Rows[i]
		row.Stock += p.Stock
		row.Threshold += p.Threshold
		row.Deficit += deficit
		row.ProductCount++
		row.ProductsBelowThreshold += below
	}
	out.Summary.CoveragePct = inventory.CoveragePct(covered, thresholdTotal)

	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i], out.Rows[j]
		if a.Deficit != b.Deficit {
			return a.Deficit > b.Deficit
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Key < b.Key
	})
	return out, nil
}

// scan valida la agrupación, resuelve la empresa y lee los productos.
// Devuelve la granularidad efectiva de las filas.
func (uc *DistributionUseCase) scan(ctx context.Context, actor tenant.Actor, req dto.AnalyticsRequest) (string, []*entity.Product, error) {
	groupBy := strings.ToLower(strings.TrimSpace(req.GroupBy))
	switch groupBy {
	case "":
		groupBy = GroupByProduct
	case GroupByProduct, GroupByCategory:
	default:
		return "", nil, domain.ErrInvalidGroupBy
	}
	businessID, err := tenant.ResolveBusiness(actor)
	if err != nil {
		return "", nil, err
	}

	categoryID := strings.TrimSpace(req.CategoryID)
	products, err := uc.productRepo.ListStock(ctx, businessID, repository.ProductFilter{CategoryID: categoryID})
	if err != nil {
		return "", nil, err
	}
	// Con una categoría fija el desglose útil es por producto.
	if groupBy == GroupByCategory && categoryID != "" {
		groupBy = GroupByProduct
	}
	return groupBy, products, nil
}

func categoryLabel(p *entity.Product) string {
	if p.CategoryID == "" {
		return UncategorizedLabel
	}
	if p.CategoryName != "" {
		return p.CategoryName
	}
	return p.CategoryID
}
