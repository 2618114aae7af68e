package dto

import "github.com/shopspring/decimal"

// AnalyticsRequest parámetros de GET /api/analytics/distribution y /deficit.
type AnalyticsRequest struct {
	GroupBy    string `query:"group_by"`    // product (defecto) | category
	CategoryID string `query:"category_id"` // con group_by=category cambia a filas por producto
}

// DistributionRowDTO fila de distribución de stock (producto o categoría).
type DistributionRowDTO struct {
	Key          string `json:"key"` // product_id o category_id
	Label        string `json:"label"`
	SKU          string `json:"sku,omitempty"`
	Stock        int    `json:"stock"`
	ProductCount int    `json:"product_count"`
}

// DistributionSummaryDTO totales sobre el conjunto barrido.
type DistributionSummaryDTO struct {
	TotalProducts int `json:"total_products"`
	TotalStock    int `json:"total_stock"`
}

// DistributionDTO respuesta de GET /api/analytics/distribution.
type DistributionDTO struct {
	GroupBy string                 `json:"group_by"` // granularidad efectiva de las filas
	Summary DistributionSummaryDTO `json:"summary"`
	Rows    []DistributionRowDTO   `json:"rows"`
}

// DeficitRowDTO fila de déficit: deficit = max(0, umbral - stock).
type DeficitRowDTO struct {
	Key                    string `json:"key"`
	Label                  string `json:"label"`
	SKU                    string `json:"sku,omitempty"`
	Stock                  int    `json:"stock"`
	Threshold              int    `json:"threshold"`
	Deficit                int    `json:"deficit"`
	Status                 string `json:"status,omitempty"` // solo en filas por producto
	ProductCount           int    `json:"product_count"`
	ProductsBelowThreshold int    `json:"products_below_threshold"`
}

// DeficitSummaryDTO totales que concilian con las filas.
type DeficitSummaryDTO struct {
	TotalProducts          int             `json:"total_products"`
	ProductsBelowThreshold int             `json:"products_below_threshold"`
	TotalDeficit           int             `json:"total_deficit"`
	CoveragePct            decimal.Decimal `json:"coverage_pct"`
}

// DeficitDTO respuesta de GET /api/analytics/deficit.
type DeficitDTO struct {
	GroupBy string            `json:"group_by"`
	Summary DeficitSummaryDTO `json:"summary"`
	Rows    []DeficitRowDTO   `json:"rows"`
}
