package dto

import "time"

// ConsistencyReportDTO comparación entre el stock guardado y la reproducción del libro.
type ConsistencyReportDTO struct {
	ProductID     string `json:"product_id"`
	StoredStock   int    `json:"stored_stock"`
	LedgerStock   int    `json:"ledger_stock"`
	MovementCount int    `json:"movement_count"`
	Consistent    bool   `json:"consistent"`
}

// AuditSummaryDTO resultado de verificar todos los productos de la empresa.
type AuditSummaryDTO struct {
	CheckedProducts int                    `json:"checked_products"`
	Inconsistent    []ConsistencyReportDTO `json:"inconsistent"`
}

// StockAtDTO stock reconstruido a una fecha reproduciendo el libro.
type StockAtDTO struct {
	ProductID     string    `json:"product_id"`
	At            time.Time `json:"at"`
	Stock         int       `json:"stock"`
	MovementCount int       `json:"movement_count"`
}
