// seed_catalog genera el script SQL de carga inicial de categorías y productos a partir de un CSV
// (business_id,category,sku,name,stock,threshold[,product_id]).
//
// Uso: go run ./cmd/seed_catalog catalogo.csv [latin1] > seed.sql
// El stock inicial se registra como movimiento ADD de apertura, así la auditoría cuadra desde el inicio.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog <catalogo.csv> [charset]")
		os.Exit(2)
	}
	charset := ""
	if len(os.Args) > 2 {
		charset = os.Args[2]
	}

	items, err := catalog.Load(os.Args[1], charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}
	if err := catalog.WriteSQL(os.Stdout, items, time.Now(), memory.SystemUser); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "OK: %d productos, %d categorías\n", len(items), len(catalog.Categories(items)))
}
