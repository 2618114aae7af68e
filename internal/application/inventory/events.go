package inventory

import "time"

// Tipos de evento publicados.
const (
	EventMovementApplied = "StockMovementApplied"
	EventStatusChanged   = "StockStatusChanged"
)

// MovementAppliedEvent se emite tras confirmar un movimiento.
type MovementAppliedEvent struct {
	MovementID string    `json:"movement_id"`
	BusinessID string    `json:"business_id"`
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	Quantity   int       `json:"quantity"`
	Delta      int       `json:"delta"`
	StockAfter int       `json:"stock_after"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StatusChangedEvent se emite cuando el clasificador cambia de estado (p. ej. in_stock -> low_stock).
type StatusChangedEvent struct {
	BusinessID string    `json:"business_id"`
	ProductID  string    `json:"product_id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Previous   string    `json:"previous"`
	Current    string    `json:"current"`
	Stock      int       `json:"stock"`
	Threshold  int       `json:"threshold"`
	OccurredAt time.Time `json:"occurred_at"`
}
