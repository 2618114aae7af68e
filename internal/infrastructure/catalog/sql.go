package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// OpeningMovementID id del movimiento de apertura de un producto.
func OpeningMovementID(productID string) string { return "opening-" + productID }

// WriteSQL escribe el script de carga inicial. Re-ejecutable: ON CONFLICT DO NOTHING.
// El stock inicial entra como movimiento ADD de apertura para que el libro cuadre desde el primer día.
func WriteSQL(w io.Writer, items []Item, at time.Time, userID string) error {
	bw := bufio.NewWriter(w)
	ts := at.UTC().Format(time.RFC3339Nano)

	fmt.Fprintf(bw, "-- Catálogo inicial: %d productos. Generado %s\n", len(items), ts)
	fmt.Fprintln(bw, "BEGIN;")
	fmt.Fprintln(bw)
	for _, c := range Categories(items) {
		fmt.Fprintf(bw, "INSERT INTO categories (id, business_id, name) VALUES (%s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			quote(c.ID), quote(c.BusinessID), quote(c.Name))
	}
	fmt.Fprintln(bw)
	for _, it := range items {
		cat := "NULL"
		if it.CategoryID != "" {
			cat = quote(it.CategoryID)
		}
		fmt.Fprintf(bw, "INSERT INTO products (id, business_id, category_id, sku, name, stock, threshold, updated_at) VALUES (%s, %s, %s, %s, %s, %d, %d, %s) ON CONFLICT (id) DO NOTHING;\n",
			quote(it.ProductID), quote(it.BusinessID), cat, quote(it.SKU), quote(it.Name), it.Stock, it.Threshold, quote(ts))
		if it.Stock > 0 {
			fmt.Fprintf(bw, "INSERT INTO stock_movements (id, business_id, product_id, user_id, type, quantity, stock_after, reason, created_at) VALUES (%s, %s, %s, %s, 'ADD', %d, %d, 'saldo inicial', %s) ON CONFLICT (id) DO NOTHING;\n",
				quote(OpeningMovementID(it.ProductID)), quote(it.BusinessID), quote(it.ProductID), quote(userID), it.Stock, it.Stock, quote(ts))
		}
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "COMMIT;")
	return bw.Flush()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
