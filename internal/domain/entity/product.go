package entity

import "time"

// Product es el estado de stock de un producto tal como lo ve el libro de movimientos.
// Los metadatos (nombre, SKU, categoría, umbral) pertenecen al catálogo; el libro solo
// modifica Stock y UpdatedAt a través del proyector.
type Product struct {
	ID           string
	BusinessID   string // empresa dueña; inmutable
	CategoryID   string // vacío si no tiene categoría
	CategoryName string // solo lectura, resuelto con JOIN
	SKU          string
	Name         string
	Stock        int // siempre >= 0
	Threshold    int // umbral de stock bajo configurado por la empresa
	UpdatedAt    time.Time
}
