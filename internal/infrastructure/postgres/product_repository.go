package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `p.id, p.business_id, COALESCE(p.category_id, ''), COALESCE(c.name, ''),
		p.sku, p.name, p.stock, p.threshold, p.updated_at`

const productFrom = `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id AND c.business_id = p.business_id`

// GetByID obtiene un producto de la empresa. (nil, nil) si no existe o es de otra empresa.
func (r *ProductRepo) GetByID(ctx context.Context, businessID, productID string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + productFrom + `
		WHERE p.business_id = $1 AND p.id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, businessID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get product", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea su fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, businessID, productID string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + productFrom + `
		WHERE p.business_id = $1 AND p.id = $2
		FOR UPDATE OF p`
	p, err := scanProduct(r.q.QueryRow(ctx, query, businessID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get product for update", err)
	}
	return p, nil
}

// SetStock escribe la proyección de stock. El CHECK (stock >= 0) de la tabla es la última barrera.
func (r *ProductRepo) SetStock(ctx context.Context, businessID, productID string, stock int, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $3, updated_at = $4 WHERE business_id = $1 AND id = $2`,
		businessID, productID, stock, at,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("update product stock: %w", domain.ErrInsufficientStock)
		}
		return classify("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// ListStock devuelve el estado de stock de la empresa, ordenado por nombre.
func (r *ProductRepo) ListStock(ctx context.Context, businessID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + productFrom + `
		WHERE p.business_id = $1`
	args := []any{businessID}
	if filter.CategoryID != "" {
		query += ` AND p.category_id = $2`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY p.name, p.id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list product stock", err)
	}
	defer rows.Close()

	out := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, classify("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list product stock", err)
	}
	return out, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.BusinessID, &p.CategoryID, &p.CategoryName,
		&p.SKU, &p.Name, &p.Stock, &p.Threshold, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
