package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertDTO foto de lectura de un producto en alerta.
type AlertDTO struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	CategoryID   string          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	Stock        int             `json:"stock"`
	Threshold    int             `json:"threshold"`
	Status       string          `json:"status"`
	StockRatio   decimal.Decimal `json:"stock_ratio"`  // stock / umbral
	LastUpdated  time.Time       `json:"last_updated"` // última proyección, no hora del libro
}

// StatusSummaryDTO conteos por estado; usa el mismo clasificador que la tabla y las alertas.
type StatusSummaryDTO struct {
	TotalProducts int `json:"total_products"`
	InStock       int `json:"in_stock"`
	LowStock      int `json:"low_stock"`
	OutOfStock    int `json:"out_of_stock"`
}

// AlertsDTO respuesta de GET /api/alerts.
type AlertsDTO struct {
	OutOfStock []AlertDTO       `json:"out_of_stock"`
	LowStock   []AlertDTO       `json:"low_stock"`
	Summary    StatusSummaryDTO `json:"summary"`
}
