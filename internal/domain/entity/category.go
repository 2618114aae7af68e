package entity

// Category representa una categoría de productos de una empresa.
type Category struct {
	ID         string
	BusinessID string
	Name       string
}
