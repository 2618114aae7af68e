package entity

import (
	"math"
	"strings"
	"time"
)

// Límites de las columnas INTEGER de products.stock y stock_movements.quantity.
const (
	MaxQuantity = math.MaxInt32
	MaxStock    = math.MaxInt32
)

// MovementType tipo de movimiento de inventario (enum cerrado).
type MovementType string

const (
	MovementAdd    MovementType = "ADD"    // entrada
	MovementRemove MovementType = "REMOVE" // salida / merma
	MovementReturn MovementType = "RETURN" // devolución de cliente
	MovementSale   MovementType = "SALE"   // venta
)

// MovementTypes lista los tipos válidos en orden estable.
var MovementTypes = []MovementType{MovementAdd, MovementRemove, MovementReturn, MovementSale}

// ParseMovementType normaliza y valida el tipo recibido en la frontera HTTP.
func ParseMovementType(s string) (MovementType, bool) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid indica si el tipo pertenece al enum.
func (t MovementType) Valid() bool {
	switch t {
	case MovementAdd, MovementRemove, MovementReturn, MovementSale:
		return true
	}
	return false
}

// Sign devuelve +1 para entradas (ADD, RETURN) y -1 para salidas (REMOVE, SALE).
func (t MovementType) Sign() int {
	switch t {
	case MovementAdd, MovementReturn:
		return 1
	case MovementRemove, MovementSale:
		return -1
	}
	return 0
}

// Delta calcula la variación firmada de stock. La cantidad nunca se guarda con signo.
func (t MovementType) Delta(quantity int) int {
	return t.Sign() * quantity
}

// Movement es un registro inmutable del libro: se crea una vez y nunca se modifica ni elimina.
type Movement struct {
	ID             string // UUIDv7, ordenable en el tiempo
	BusinessID     string
	ProductID      string
	UserID         string
	Type           MovementType
	Quantity       int // estrictamente positiva
	StockAfter     int // proyección inmediatamente después del movimiento
	IdempotencyKey string
	Reason         string
	CreatedAt      time.Time
}

// Delta variación firmada del movimiento.
func (m *Movement) Delta() int {
	return m.Type.Delta(m.Quantity)
}

// SameRequest indica si otro pedido con la misma clave de idempotencia describe el mismo movimiento.
func (m *Movement) SameRequest(productID string, t MovementType, quantity int) bool {
	return m.ProductID == productID && m.Type == t && m.Quantity == quantity
}
