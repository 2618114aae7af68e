// Package catalog carga el catálogo inicial de productos desde CSV para el modo en memoria
// y para generar el script SQL de carga inicial.
package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Namespace para IDs deterministas (mismo CSV → mismos IDs en cada carga).
var idNamespace = uuid.MustParse("6f1c9a52-3c1e-4b8a-9d0f-2a7e5b4c8d10")

// Columnas obligatorias del CSV; product_id es opcional.
var requiredColumns = []string{"business_id", "category", "sku", "name", "stock", "threshold"}

var ErrMissingColumn = errors.New("catalog: falta una columna obligatoria")

// Item fila del catálogo.
type Item struct {
	BusinessID   string
	CategoryID   string
	CategoryName string
	ProductID    string
	SKU          string
	Name         string
	Stock        int
	Threshold    int
}

// Load abre y lee el archivo. charset: "" / "utf-8" o "latin1" (exportaciones de Excel).
func Load(path, charset string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: abrir %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, charset)
}

// Read parsea el CSV y devuelve las filas ordenadas por empresa y SKU.
func Read(r io.Reader, charset string) ([]Item, error) {
	in, err := decoder(r, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: leer encabezado: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []Item
	seen := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: línea %d: %w", line, err)
		}
		it := Item{
			BusinessID:   field(rec, "business_id"),
			CategoryName: field(rec, "category"),
			SKU:          field(rec, "sku"),
			Name:         field(rec, "name"),
			ProductID:    field(rec, "product_id"),
		}
		if it.BusinessID == "" || it.SKU == "" || it.Name == "" {
			return nil, fmt.Errorf("catalog: línea %d: business_id, sku y name son obligatorios", line)
		}
		if it.Stock, err = nonNegative(field(rec, "stock")); err != nil {
			return nil, fmt.Errorf("catalog: línea %d: stock: %w", line, err)
		}
		if it.Threshold, err = nonNegative(field(rec, "threshold")); err != nil {
			return nil, fmt.Errorf("catalog: línea %d: threshold: %w", line, err)
		}
		if it.CategoryName != "" {
			it.CategoryID = uuid.NewSHA1(idNamespace, []byte(it.BusinessID+"|cat|"+strings.ToLower(it.CategoryName))).String()
		}
		if it.ProductID == "" {
			it.ProductID = uuid.NewSHA1(idNamespace, []byte(it.BusinessID+"|sku|"+it.SKU)).String()
		}
		key := it.BusinessID + "|" + it.SKU
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("catalog: línea %d: SKU %s repetido (línea %d)", line, it.SKU, prev)
		}
		seen[key] = line
		items = append(items, it)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].BusinessID != items[j].BusinessID {
			return items[i].BusinessID < items[j].BusinessID
		}
		return items[i].SKU < items[j].SKU
	})
	return items, nil
}

func decoder(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		br := bufio.NewReader(r)
		if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
			_, _ = br.Discard(3)
		}
		return br, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("catalog: charset no soportado %q", charset)
	}
}

func nonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("entero inválido %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("no puede ser negativo (%d)", n)
	}
	return n, nil
}

// Categories categorías únicas del catálogo.
func Categories(items []Item) []entity.Category {
	var out []entity.Category
	seen := make(map[string]bool)
	for _, it := range items {
		if it.CategoryID == "" || seen[it.CategoryID] {
			continue
		}
		seen[it.CategoryID] = true
		out = append(out, entity.Category{ID: it.CategoryID, BusinessID: it.BusinessID, Name: it.CategoryName})
	}
	return out
}

// Product convierte la fila a la entidad del libro.
func (it Item) Product(at time.Time) entity.Product {
	return entity.Product{
		ID:           it.ProductID,
		BusinessID:   it.BusinessID,
		CategoryID:   it.CategoryID,
		CategoryName: it.CategoryName,
		SKU:          it.SKU,
		Name:         it.Name,
		Stock:        it.Stock,
		Threshold:    it.Threshold,
		UpdatedAt:    at,
	}
}

// Seeder destino del catálogo en memoria (memory.Store).
type Seeder interface {
	AddCategory(c entity.Category)
	AddProduct(p entity.Product) error
}

// Seed carga el catálogo en el almacén en memoria. El stock inicial queda como movimiento de apertura.
func Seed(s Seeder, items []Item, at time.Time) error {
	for _, c := range Categories(items) {
		s.AddCategory(c)
	}
	for _, it := range items {
		if err := s.AddProduct(it.Product(at)); err != nil {
			return fmt.Errorf("sembrar catálogo: %w", err)
		}
	}
	return nil
}
