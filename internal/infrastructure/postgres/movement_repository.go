package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const idempotencyConstraint = "ux_stock_movements_idempotency"

// MovementRepo libro de movimientos sobre PostgreSQL: solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `m.id, m.business_id, m.product_id, m.user_id, m.type, m.quantity,
		m.stock_after, COALESCE(m.idempotency_key, ''), m.reason, m.created_at`

// Create agrega un movimiento al libro.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (id, business_id, product_id, user_id, type, quantity, stock_after, idempotency_key, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.BusinessID, m.ProductID, m.UserID, string(m.Type), m.Quantity,
		m.StockAfter, m.IdempotencyKey, m.Reason, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, idempotencyConstraint) {
			return domain.ErrIdempotencyConflict
		}
		if isUniqueViolation(err, "") {
			return fmt.Errorf("insert movement: %w", domain.ErrConflict)
		}
		return classify("insert movement", err)
	}
	return nil
}

// GetByIdempotencyKey busca el movimiento registrado con la clave. (nil, nil) si no existe.
func (r *MovementRepo) GetByIdempotencyKey(ctx context.Context, businessID, key string) (*entity.Movement, error) {
	if key == "" {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m
		WHERE m.business_id = $1 AND m.idempotency_key = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, businessID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get movement by idempotency key", err)
	}
	return m, nil
}

// List página de movimientos con datos del producto. El total sale de COUNT(*) OVER().
func (r *MovementRepo) List(ctx context.Context, businessID string, filter repository.MovementFilter, limit, offset int) ([]repository.MovementRow, int, error) {
	offset = max(offset, 0)
	query, args := buildListQuery(businessID, filter, limit, offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("list movements", err)
	}
	defer rows.Close()

	out := make([]repository.MovementRow, 0)
	total := 0
	for rows.Next() {
		var (
			row repository.MovementRow
			mt  string
		)
		if err := rows.Scan(
			&row.ID, &row.BusinessID, &row.ProductID, &row.UserID, &mt, &row.Quantity,
			&row.StockAfter, &row.IdempotencyKey, &row.Reason, &row.CreatedAt,
			&row.ProductName, &row.SKU, &row.CategoryID, &row.CategoryName,
			&total,
		); err != nil {
			return nil, 0, classify("scan movement", err)
		}
		row.Type = entity.MovementType(mt)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("list movements", err)
	}

	// Página fuera de rango: la ventana no devuelve filas, se cuenta aparte.
	if len(out) == 0 && offset > 0 {
		countQuery, countArgs := buildCountQuery(businessID, filter)
		if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, classify("count movements", err)
		}
	}
	return out, total, nil
}

// ListByProduct movimientos del producto en orden de escritura, hasta until inclusive.
func (r *MovementRepo) ListByProduct(ctx context.Context, businessID, productID string, until *time.Time) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m
		WHERE m.business_id = $1 AND m.product_id = $2`
	args := []any{businessID, productID}
	if until != nil {
		query += ` AND m.created_at <= $3`
		args = append(args, *until)
	}
	query += ` ORDER BY m.created_at, m.id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list product movements", err)
	}
	defer rows.Close()

	out := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, classify("scan movement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list product movements", err)
	}
	return out, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m  entity.Movement
		mt string
	)
	if err := row.Scan(
		&m.ID, &m.BusinessID, &m.ProductID, &m.UserID, &mt, &m.Quantity,
		&m.StockAfter, &m.IdempotencyKey, &m.Reason, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(mt)
	return &m, nil
}

const movementListFrom = `
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id AND p.business_id = m.business_id
		LEFT JOIN categories c ON c.id = p.category_id AND c.business_id = p.business_id`

// movementConditions arma el WHERE común del listado y del conteo.
func movementConditions(businessID string, f repository.MovementFilter) (string, []any) {
	conditions := []string{"m.business_id = $1"}
	args := []any{businessID}
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("m.product_id = $%d", f.ProductID)
	}
	if f.CategoryID != "" {
		add("p.category_id = $%d", f.CategoryID)
	}
	if f.Type != "" {
		add("m.type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("m.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("m.created_at < $%d", *f.To)
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.sku ILIKE $%d)", n, n))
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func buildListQuery(businessID string, f repository.MovementFilter, limit, offset int) (string, []any) {
	where, args := movementConditions(businessID, f)
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	var b strings.Builder
	b.WriteString(`SELECT ` + movementColumns + `,
		p.name, p.sku, COALESCE(p.category_id, ''), COALESCE(c.name, ''),
		COUNT(*) OVER() AS total_count`)
	b.WriteString(movementListFrom)
	b.WriteString(where)
	fmt.Fprintf(&b, " ORDER BY m.created_at %s, m.id %s", dir, dir)
	fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return b.String(), args
}

func buildCountQuery(businessID string, f repository.MovementFilter) (string, []any) {
	where, args := movementConditions(businessID, f)
	return `SELECT COUNT(*)` + movementListFrom + where, args
}

// escapeLike escapa los comodines de LIKE en el texto buscado.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
