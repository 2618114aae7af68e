package inventory

// Status estado de salud del stock de un producto.
type Status int

const (
	InStock Status = iota
	LowStock
	OutOfStock
)

// Classify es la única fuente de verdad del estado de stock; todas las vistas la usan.
//
//	stock <= 0              -> OutOfStock (sin importar el umbral)
//	0 < stock < threshold   -> LowStock
//	stock >= threshold      -> InStock
//
// Con threshold == 0 cualquier stock positivo es InStock.
func Classify(stock, threshold int) Status {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock < threshold:
		return LowStock
	default:
		return InStock
	}
}

// Label etiqueta estable usada en respuestas y eventos.
func (s Status) Label() string {
	switch s {
	case OutOfStock:
		return "out_of_stock"
	case LowStock:
		return "low_stock"
	default:
		return "in_stock"
	}
}

func (s Status) String() string { return s.Label() }

// Alerting indica si el estado debe aparecer en la lista de alertas.
func (s Status) Alerting() bool { return s != InStock }
