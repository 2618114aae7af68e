package dto

import (
	"encoding/json"
	"time"
)

// ApplyMovementRequest body para POST /api/movements.
// El businessID y el userID salen del token, nunca del cuerpo.
type ApplyMovementRequest struct {
	ProductID string      `json:"product_id"`
	Type      string      `json:"type"`                           // ADD | REMOVE | RETURN | SALE
	Quantity  json.Number `json:"quantity" swaggertype:"integer"` // entero positivo; 1.5 es cantidad inválida
	Reason    string      `json:"reason,omitempty"`
}

// ApplyMovementResponse resultado de un movimiento aceptado (o reproducido por idempotencia).
type ApplyMovementResponse struct {
	MovementID string `json:"movement_id"`
	Stock      int    `json:"stock"`
	Status     string `json:"status"`
	Replayed   bool   `json:"replayed"`
}

// ListMovementsRequest parámetros de GET /api/movements.
type ListMovementsRequest struct {
	PageRequest
	ProductID  string `query:"product_id"`
	CategoryID string `query:"category_id"`
	Type       string `query:"type"`
	DateFrom   string `query:"date_from"` // YYYY-MM-DD o RFC3339
	DateTo     string `query:"date_to"`   // YYYY-MM-DD (día completo) o RFC3339
	Search     string `query:"search"`
	Order      string `query:"order"` // desc (defecto) | asc
}

// MovementDTO fila del listado de movimientos.
type MovementDTO struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	UserID       string    `json:"user_id"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Delta        int       `json:"delta"`
	StockAfter   int       `json:"stock_after"`
	Reason       string    `json:"reason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// MovementPageDTO respuesta de GET /api/movements.
type MovementPageDTO struct {
	Rows       []MovementDTO `json:"rows"`
	Pagination PageResponse  `json:"pagination"`
}
